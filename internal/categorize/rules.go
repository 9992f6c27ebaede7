package categorize

// defaultRules is the built-in ordered rule table. More specific keywords
// sit above shorter ones that would shadow them.
var defaultRules = []Rule{
	// Income
	{Keyword: "salary", Category: "Income"},
	{Keyword: "payroll", Category: "Income"},
	{Keyword: "wages", Category: "Income"},
	{Keyword: "interest credit", Category: "Income"},
	{Keyword: "dividend", Category: "Income"},

	// Loans
	{Keyword: "emi", Category: "EMI"},
	{Keyword: "loan repay", Category: "EMI"},

	// Cash
	{Keyword: "atm withdrawal", Category: "Cash"},
	{Keyword: "atm wdl", Category: "Cash"},
	{Keyword: "cash withdrawal", Category: "Cash"},
	{Keyword: "cash deposit", Category: "Cash"},

	// Transfers
	{Keyword: "neft", Category: "Transfers"},
	{Keyword: "imps", Category: "Transfers"},
	{Keyword: "rtgs", Category: "Transfers"},
	{Keyword: "upi", Category: "Transfers"},

	// Groceries
	{Keyword: "walmart", Category: "Groceries"},
	{Keyword: "costco", Category: "Groceries"},
	{Keyword: "safeway", Category: "Groceries"},
	{Keyword: "kroger", Category: "Groceries"},
	{Keyword: "whole foods", Category: "Groceries"},
	{Keyword: "big bazaar", Category: "Groceries"},
	{Keyword: "dmart", Category: "Groceries"},

	// Food & dining
	{Keyword: "swiggy", Category: "Food Delivery"},
	{Keyword: "zomato", Category: "Food Delivery"},
	{Keyword: "doordash", Category: "Food Delivery"},
	{Keyword: "uber eats", Category: "Food Delivery"},
	{Keyword: "starbucks", Category: "Coffee Shops"},
	{Keyword: "mcdonald", Category: "Restaurants"},
	{Keyword: "restaurant", Category: "Restaurants"},

	// Transport
	{Keyword: "uber", Category: "Ride Sharing"},
	{Keyword: "ola cabs", Category: "Ride Sharing"},
	{Keyword: "lyft", Category: "Ride Sharing"},
	{Keyword: "petrol", Category: "Gas & Fuel"},
	{Keyword: "fuel", Category: "Gas & Fuel"},
	{Keyword: "shell", Category: "Gas & Fuel"},
	{Keyword: "indian oil", Category: "Gas & Fuel"},

	// Shopping
	{Keyword: "amazon", Category: "Shopping"},
	{Keyword: "amzn", Category: "Shopping"},
	{Keyword: "flipkart", Category: "Shopping"},
	{Keyword: "myntra", Category: "Shopping"},
	{Keyword: "target", Category: "Shopping"},

	// Bills & utilities
	{Keyword: "electricity", Category: "Bills & Utilities"},
	{Keyword: "water bill", Category: "Bills & Utilities"},
	{Keyword: "broadband", Category: "Bills & Utilities"},
	{Keyword: "airtel", Category: "Bills & Utilities"},
	{Keyword: "vodafone", Category: "Bills & Utilities"},
	{Keyword: "netflix", Category: "Subscriptions"},
	{Keyword: "spotify", Category: "Subscriptions"},
	{Keyword: "hotstar", Category: "Subscriptions"},

	// Health
	{Keyword: "pharmacy", Category: "Pharmacy"},
	{Keyword: "apollo", Category: "Pharmacy"},
	{Keyword: "hospital", Category: "Healthcare"},

	// Insurance & investment
	{Keyword: "lic premium", Category: "Insurance"},
	{Keyword: "insurance", Category: "Insurance"},
	{Keyword: "mutual fund", Category: "Investments"},
	{Keyword: "sip", Category: "Investments"},

	// Travel
	{Keyword: "irctc", Category: "Travel"},
	{Keyword: "makemytrip", Category: "Travel"},
	{Keyword: "airbnb", Category: "Travel"},
	{Keyword: "indigo", Category: "Travel"},

	// Charges
	{Keyword: "bank charges", Category: "Fees & Charges"},
	{Keyword: "sms charges", Category: "Fees & Charges"},
	{Keyword: "annual fee", Category: "Fees & Charges"},
	{Keyword: "penalty", Category: "Fees & Charges"},
}
