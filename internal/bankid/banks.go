package bankid

// bankDef describes one recognizable issuing bank. The pattern list is
// matched case-insensitively against statement text; longer patterns raise
// the confidence ceiling for a match.
type bankDef struct {
	Code       string
	Name       string
	Patterns   []string
	IFSCPrefix string
}

// bankTable is ordered: earlier entries win ties on confidence. The set
// mirrors the banks whose statement layouts the normalizer has been
// exercised against.
var bankTable = []bankDef{
	{
		Code:       "HDFC",
		Name:       "HDFC Bank",
		Patterns:   []string{"HDFC", "HDFC BANK", "H D F C", "Housing Development Finance Corporation"},
		IFSCPrefix: "HDFC",
	},
	{
		Code:       "ICICI",
		Name:       "ICICI Bank",
		Patterns:   []string{"ICICI", "ICICI BANK", "I C I C I", "Industrial Credit and Investment Corporation of India"},
		IFSCPrefix: "ICIC",
	},
	{
		Code:       "SBI",
		Name:       "State Bank of India",
		Patterns:   []string{"SBI", "STATE BANK OF INDIA", "S B I", "State Bank"},
		IFSCPrefix: "SBIN",
	},
	{
		Code:       "AXIS",
		Name:       "Axis Bank",
		Patterns:   []string{"AXIS", "AXIS BANK", "A X I S"},
		IFSCPrefix: "UTIB",
	},
	{
		Code:       "KOTAK",
		Name:       "Kotak Mahindra Bank",
		Patterns:   []string{"KOTAK", "KOTAK MAHINDRA", "KMB", "Kotak Bank"},
		IFSCPrefix: "KKBK",
	},
	{
		Code:       "PNB",
		Name:       "Punjab National Bank",
		Patterns:   []string{"PNB", "PUNJAB NATIONAL BANK", "P N B"},
		IFSCPrefix: "PUNB",
	},
	{
		Code:       "BOB",
		Name:       "Bank of Baroda",
		Patterns:   []string{"BOB", "BANK OF BARODA", "B O B"},
		IFSCPrefix: "BARB",
	},
	{
		Code:       "CANARA",
		Name:       "Canara Bank",
		Patterns:   []string{"CANARA", "CANARA BANK"},
		IFSCPrefix: "CNRB",
	},
	{
		Code:       "UNION",
		Name:       "Union Bank of India",
		Patterns:   []string{"UNION BANK", "UNION BANK OF INDIA", "UBIN"},
		IFSCPrefix: "UBIN",
	},
	{
		Code:       "INDIAN",
		Name:       "Indian Bank",
		Patterns:   []string{"INDIAN BANK"},
		IFSCPrefix: "IDIB",
	},
}
