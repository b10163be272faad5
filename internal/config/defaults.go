package config

// DefaultTaxonomy returns the built-in trigger phrase taxonomy.
// Categories map to the outsourcing-opportunity signals the pipeline
// watches for; an external taxonomy file replaces this wholesale.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		"manufacturing_partner": {
			"seeks manufacturing partner",
			"looking for contract manufacturer",
			"manufacturing partnership",
			"cmo agreement",
			"contract manufacturing deal",
			"outsource manufacturing",
			"third party manufacturing",
		},
		"product_approval": {
			"new product approval",
			"dcgi approval",
			"cdsco approval",
			"drug approval",
			"product launch",
			"new drug application approved",
		},
		"expansion": {
			"capacity expansion",
			"new product line",
			"expanding portfolio",
			"geographic expansion",
			"market expansion plans",
			"new manufacturing facility",
		},
		"licensing": {
			"loan license agreement",
			"licensing deal",
			"in-licensing",
			"out-licensing",
			"technology transfer",
		},
		"competitor_issue": {
			"warning letter",
			"import alert",
			"recall",
			"manufacturing deficiency",
			"quality issue",
			"quality violation",
			"quality violations",
			"plant shutdown",
		},
		"job_signal": {
			"hiring production chemists",
			"plant expansion hiring",
			"manufacturing jobs",
			"production capacity roles",
		},
	}
}

// DefaultPositiveWords returns the built-in positive sentiment lexicon
// for the pharma/business register.
func DefaultPositiveWords() []string {
	return []string{
		"growth", "expansion", "approval", "success", "partnership",
		"launch", "profit", "milestone", "achievement", "breakthrough",
		"innovation", "leading", "strong", "positive", "increase",
		"revenue", "opportunity", "winning", "awarded", "excellent",
	}
}

// DefaultNegativeWords returns the built-in negative sentiment lexicon.
func DefaultNegativeWords() []string {
	return []string{
		"recall", "warning", "failure", "decline", "loss", "issue",
		"problem", "shutdown", "closure", "lawsuit", "penalty",
		"violation", "violations", "deficiency", "concern", "risk", "drop",
		"shortage", "delay", "rejected", "suspended",
	}
}
