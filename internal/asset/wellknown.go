package asset

// ExodusSymbols is the universe listed by the Exodus exchange, in the order
// searches walk it.
var ExodusSymbols = []string{
	"ZRX", "AAVE", "ADT", "ARN", "AION", "AST", "ALGO", "AMB", "APPC", "ANT",
	"ANTv1", "ARK", "REP", "REPv1", "BAL", "BNT", "BAT", "BNB", "BTC", "BCH",
	"BTG", "BSV", "BTT", "BFT", "BRD", "SNGLS", "ADA", "LINK", "CND", "CVC",
	"COMP", "CDAI", "ATOM", "CRO", "CRV", "DAI", "DASH", "MANA", "DCR", "DENT",
	"DCN", "DGB", "DGD", "DNT", "DOGE", "DRGN", "EDG", "EOS", "ETH", "ETC",
	"1ST", "FUN", "GUSD", "GVT", "GNO", "GLM", "GNT", "HBAR", "ICX", "RLC",
	"KIN", "KNC", "LSK", "LTC", "LOOM", "LUN", "MKR", "GUP", "MCO", "MDS",
	"MLN", "MTL", "MITH", "XMR", "NANO", "XEM", "NEO", "GAS", "NMR", "OMG",
	"ONT", "ONG", "PAXG", "PAX", "PLR", "POE", "DOT", "POLY", "PPT", "POWR",
	"QASH", "QTUM", "QSP", "RDN", "RVN", "REN", "REQ", "REV", "RCN", "RVT",
	"SAI", "SALT", "SAN", "SRM", "SOL", "SX", "SNT", "XLM", "STORJ", "STORM",
	"STMX", "SUSHI", "SNX", "TAAS", "PAY", "USDT", "XTZ", "TNB", "TRX", "TUSD",
	"UMA", "UNI", "LEO", "USDC", "VET", "VERI", "VTC", "VTHO", "VIB", "VGX",
	"WTC", "WAVES", "WAX", "TRST", "WINGS", "WBTC", "XRP", "YFI", "ZEC", "ZIL",
}

// DefaultRegistry returns a registry of ExodusSymbols.
func DefaultRegistry() *Registry {
	return NewRegistry(ExodusSymbols...)
}

// RegistryFor returns a registry of override, or the default one when
// override is empty.
func RegistryFor(override []string) *Registry {
	if len(override) == 0 {
		return DefaultRegistry()
	}
	return NewRegistry(override...)
}
