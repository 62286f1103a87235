package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const transferGasLimit = 21000

// Client wraps an Ethereum JSON-RPC connection and the hot wallet key.
// It covers exactly what the execution bridge needs: balance, plain ETH
// transfer, and receipt wait.
type Client struct {
	rpc          *ethclient.Client
	privateKey   *ecdsa.PrivateKey
	address      common.Address
	chainID      *big.Int
	pollInterval time.Duration
}

// Dial connects to the RPC endpoint and derives the wallet address from the
// private key.
func Dial(rpcURL, privateKeyHex string, chainID int64) (*Client, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Client{
		rpc:          rpc,
		privateKey:   key,
		address:      crypto.PubkeyToAddress(key.PublicKey),
		chainID:      big.NewInt(chainID),
		pollInterval: 2 * time.Second,
	}, nil
}

// Address returns the hot wallet address.
func (c *Client) Address() common.Address {
	return c.address
}

// Balance returns the wallet's current balance in wei.
func (c *Client) Balance(ctx context.Context) (*big.Int, error) {
	return c.rpc.BalanceAt(ctx, c.address, nil)
}

// Send signs and broadcasts a plain ETH transfer, returning the transaction
// hash. Once this returns without error the transfer cannot be retracted.
func (c *Client) Send(ctx context.Context, to common.Address, wei *big.Int) (common.Hash, error) {
	nonce, err := c.rpc.PendingNonceAt(ctx, c.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, to, wei, transferGasLimit, gasPrice, nil)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.rpc.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast transaction: %w", err)
	}

	return signedTx.Hash(), nil
}

// WaitMined polls for the transaction receipt until the transaction is mined
// or the context is cancelled.
func (c *Client) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.rpc.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}
