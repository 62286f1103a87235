package eth

import "fmt"

var explorerBaseURLs = map[int64]string{
	1:        "https://etherscan.io",
	11155111: "https://sepolia.etherscan.io",
	137:      "https://polygonscan.com",
	42161:    "https://arbiscan.io",
	10:       "https://optimistic.etherscan.io",
	8453:     "https://basescan.org",
}

// ExplorerTxURL builds a block explorer link for a transaction hash.
// Unknown chains fall back to Etherscan.
func ExplorerTxURL(chainID int64, txHash string) string {
	base, ok := explorerBaseURLs[chainID]
	if !ok {
		base = explorerBaseURLs[1]
	}
	return fmt.Sprintf("%s/tx/%s", base, txHash)
}
