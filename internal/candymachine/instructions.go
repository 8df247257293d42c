// ==============================================
// File: internal/candymachine/instructions.go
// ==============================================
package candymachine

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MintNFTDiscriminator is the Anchor sighash of the mint_nft instruction.
var MintNFTDiscriminator = bin.Sighash(bin.SIGHASH_GLOBAL_NAMESPACE, "mint_nft")

// MintNFTAccounts lists the accounts mint_nft expects.
type MintNFTAccounts struct {
	Program         solana.PublicKey
	Config          solana.PublicKey
	CandyMachine    solana.PublicKey
	Payer           solana.PublicKey
	Wallet          solana.PublicKey
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	UpdateAuthority solana.PublicKey
	MasterEdition   solana.PublicKey
}

// BuildMintNFTInstruction builds the candy machine mint_nft instruction.
func BuildMintNFTInstruction(accounts MintNFTAccounts) solana.Instruction {
	data := make([]byte, len(MintNFTDiscriminator))
	copy(data, MintNFTDiscriminator)

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Config, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.CandyMachine, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.Wallet, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.MintAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.UpdateAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.MasterEdition, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenMetadataProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarClockPubkey, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.Program, insAccounts, data)
}

// FindMetadataAddress derives the token metadata PDA for mint.
func FindMetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindTokenMetadataAddress(mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return addr, nil
}

// FindMasterEditionAddress derives the master edition PDA for mint.
func FindMasterEditionAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		solana.TokenMetadataProgramID[:],
		mint[:],
		[]byte("edition"),
	}, solana.TokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive master edition address: %w", err)
	}
	return addr, nil
}
