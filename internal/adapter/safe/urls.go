package safe

import "fmt"

var txServiceBaseURLs = map[int64]string{
	1:        "https://safe-transaction-mainnet.safe.global",
	11155111: "https://safe-transaction-sepolia.safe.global",
	137:      "https://safe-transaction-polygon.safe.global",
	42161:    "https://safe-transaction-arbitrum.safe.global",
	10:       "https://safe-transaction-optimism.safe.global",
	8453:     "https://safe-transaction-base.safe.global",
}

var chainPrefixes = map[int64]string{
	1:        "eth",
	11155111: "sep",
	137:      "matic",
	42161:    "arb1",
	10:       "oeth",
	8453:     "base",
}

func chainPrefix(chainID int64) string {
	if prefix, ok := chainPrefixes[chainID]; ok {
		return prefix
	}
	return "eth"
}

// AppURL links to the Safe web app home for the given Safe.
func AppURL(chainID int64, safeAddress string) string {
	return fmt.Sprintf("https://app.safe.global/home?safe=%s:%s", chainPrefix(chainID), safeAddress)
}

// SigningURL links to a specific multisig transaction in the Safe web app
// where owners sign and execute it.
func SigningURL(chainID int64, safeAddress, safeTxHash string) string {
	return fmt.Sprintf("https://app.safe.global/transactions/tx?safe=%s:%s&id=multisig_%s_%s",
		chainPrefix(chainID), safeAddress, safeAddress, safeTxHash)
}
