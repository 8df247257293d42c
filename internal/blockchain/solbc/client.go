// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain"
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
	logger     *zap.Logger
}

// IsAccountNotFoundError проверяет, является ли ошибка "not found"
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
// commitment используется для чтений и preflight-симуляции.
func NewClient(rpcURL string, commitment rpc.CommitmentType, logger *zap.Logger) *Client {
	return NewClientWithRPC(rpc.New(rpcURL), commitment, logger)
}

// NewClientWithRPC оборачивает готовый rpc.Client.
func NewClientWithRPC(client *rpc.Client, commitment rpc.CommitmentType, logger *zap.Logger) *Client {
	return &Client{
		rpc:        client,
		commitment: blockchain.NormalizeCommitment(commitment),
		logger:     logger.Named("solbc-client"),
	}
}

// GetAccountInfo получает информацию об аккаунте. Отсутствующий аккаунт – (nil, nil).
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*blockchain.AccountInfo, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if err != nil {
		if IsAccountNotFoundError(err) {
			return nil, nil
		}
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, nil
	}

	info := &blockchain.AccountInfo{
		Owner:    result.Value.Owner,
		Lamports: result.Value.Lamports,
	}
	if result.Value.Data != nil {
		info.Data = result.Value.Data.GetBinary()
	}
	return info, nil
}

// GetBalance получает баланс аккаунта.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, c.commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.String("pubkey", pubkey.String()), zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// GetLatestBlockhash получает последний blockhash.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// SendTransaction отправляет транзакцию. Preflight включён: ошибки программы
// (например, custom program error: 0x137) возвращаются сразу в jsonrpc.RPCError.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetSignatureStatus получает статус одной подписи. Неизвестная подпись – (nil, nil).
func (c *Client) GetSignatureStatus(
	ctx context.Context,
	sig solana.Signature,
	commitment rpc.CommitmentType,
) (*blockchain.SignatureStatus, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		c.logger.Warn("GetSignatureStatuses error", zap.String("signature", sig.String()), zap.Error(err))
		return nil, err
	}
	if result == nil || len(result.Value) == 0 || result.Value[0] == nil {
		return nil, nil
	}

	status := result.Value[0]
	return &blockchain.SignatureStatus{
		Slot:               status.Slot,
		ConfirmationStatus: status.ConfirmationStatus,
		Confirmed:          blockchain.CommitmentReached(status.ConfirmationStatus, commitment),
		Err:                status.Err,
	}, nil
}

// Гарантируем, что Client реализует интерфейс blockchain.LedgerClient.
var _ blockchain.LedgerClient = (*Client)(nil)
