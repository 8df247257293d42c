// =============================================
// File: internal/candymachine/builder.go
// =============================================
package candymachine

import (
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

// PurchaseRequest carries every input of a purchase transaction. The mint
// keypair and blockhash are supplied by the caller so Build stays pure.
type PurchaseRequest struct {
	Config          SaleConfig
	Buyer           solana.PublicKey
	Treasury        solana.PublicKey
	Mint            solana.PrivateKey
	RecentBlockhash solana.Hash
}

// UnsignedTransaction is the built purchase awaiting the buyer's signature.
// EphemeralSigners must co-sign before submission.
type UnsignedTransaction struct {
	Tx               *solana.Transaction
	Mint             solana.PublicKey
	EphemeralSigners []solana.PrivateKey
}

// Builder assembles purchase transactions. No network I/O.
type Builder struct {
	logger *zap.Logger
}

func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger.Named("cm-builder")}
}

// Build returns the ordered purchase transaction: mint account setup,
// payment transfer (PaymentTransfer only), then mint_nft.
func (b *Builder) Build(req PurchaseRequest) (*UnsignedTransaction, error) {
	cfg := req.Config.WithDefaults()
	if err := validateRequest(req, cfg); err != nil {
		return nil, err
	}

	mint := req.Mint.PublicKey()
	buyer := req.Buyer

	buyerATA, _, err := solana.FindAssociatedTokenAddress(buyer, mint)
	if err != nil {
		return nil, &BuildError{Field: "mint", Reason: "derive associated token account", Err: err}
	}
	metadata, err := FindMetadataAddress(mint)
	if err != nil {
		return nil, &BuildError{Field: "mint", Reason: "derive metadata", Err: err}
	}
	masterEdition, err := FindMasterEditionAddress(mint)
	if err != nil {
		return nil, &BuildError{Field: "mint", Reason: "derive master edition", Err: err}
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			MintRentExemptLamports,
			MintAccountSize,
			solana.TokenProgramID,
			buyer,
			mint,
		).Build(),
		token.NewInitializeMintInstruction(0, buyer, buyer, mint, solana.SysVarRentPubkey).Build(),
		associatedtokenaccount.NewCreateInstruction(buyer, buyer, mint).Build(),
		token.NewMintToInstruction(1, mint, buyerATA, buyer, nil).Build(),
	}

	if cfg.PaymentScheme == PaymentTransfer {
		instructions = append(instructions,
			system.NewTransferInstruction(cfg.PriceLamports, buyer, req.Treasury).Build())
	}

	instructions = append(instructions, BuildMintNFTInstruction(MintNFTAccounts{
		Program:         cfg.ProgramID,
		Config:          cfg.Config,
		CandyMachine:    cfg.CandyMachine,
		Payer:           buyer,
		Wallet:          req.Treasury,
		Metadata:        metadata,
		Mint:            mint,
		MintAuthority:   buyer,
		UpdateAuthority: buyer,
		MasterEdition:   masterEdition,
	}))

	tx, err := solana.NewTransaction(instructions, req.RecentBlockhash, solana.TransactionPayer(buyer))
	if err != nil {
		return nil, &BuildError{Field: "transaction", Reason: "assemble", Err: err}
	}

	b.logger.Debug("Purchase transaction built",
		zap.String("buyer", buyer.String()),
		zap.String("mint", mint.String()),
		zap.String("scheme", string(cfg.PaymentScheme)),
		zap.Int("instructions", len(instructions)))

	return &UnsignedTransaction{
		Tx:               tx,
		Mint:             mint,
		EphemeralSigners: []solana.PrivateKey{req.Mint},
	}, nil
}

func validateRequest(req PurchaseRequest, cfg SaleConfig) error {
	switch {
	case req.Buyer.IsZero():
		return &BuildError{Field: "buyer", Reason: "address is required"}
	case req.Treasury.IsZero():
		return &BuildError{Field: "treasury", Reason: "address is required"}
	case cfg.CandyMachine.IsZero():
		return &BuildError{Field: "candy_machine", Reason: "address is required"}
	case cfg.Config.IsZero():
		return &BuildError{Field: "config", Reason: "address is required"}
	case len(req.Mint) != 64:
		return &BuildError{Field: "mint", Reason: "ephemeral mint keypair is required"}
	case req.RecentBlockhash.IsZero():
		return &BuildError{Field: "recent_blockhash", Reason: "blockhash is required"}
	case cfg.PaymentScheme == PaymentTransfer && cfg.PriceLamports == 0:
		return &BuildError{Field: "price", Reason: "price must be positive"}
	case cfg.PaymentScheme != PaymentTransfer && cfg.PaymentScheme != PaymentProgram:
		return &BuildError{Field: "payment_scheme", Reason: "unknown scheme " + string(cfg.PaymentScheme)}
	}
	return nil
}
