// =============================================
// File: internal/candymachine/account.go
// =============================================
package candymachine

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// CandyMachineDiscriminator is the Anchor account discriminator of CandyMachine.
var CandyMachineDiscriminator = bin.Sighash(bin.SIGHASH_ACCOUNT_NAMESPACE, "CandyMachine")

// CandyMachineData mirrors the data field of the on-chain account.
type CandyMachineData struct {
	UUID           string
	Price          uint64
	ItemsAvailable uint64
	GoLiveDate     *int64
}

// CandyMachineAccount is the decoded candy machine v1 account.
type CandyMachineAccount struct {
	Authority     solana.PublicKey
	Wallet        solana.PublicKey
	TokenMint     *solana.PublicKey
	Config        solana.PublicKey
	Data          CandyMachineData
	ItemsRedeemed uint64
	Bump          uint8
}

// DecodeCandyMachine checks the discriminator and decodes the account body.
func DecodeCandyMachine(data []byte) (*CandyMachineAccount, error) {
	if len(data) < len(CandyMachineDiscriminator) {
		return nil, fmt.Errorf("account data too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], CandyMachineDiscriminator) {
		return nil, fmt.Errorf("unexpected account discriminator %x", data[:8])
	}

	account := &CandyMachineAccount{}
	if err := account.UnmarshalWithDecoder(bin.NewBorshDecoder(data[8:])); err != nil {
		return nil, err
	}
	return account, nil
}

// EncodeCandyMachine is the inverse of DecodeCandyMachine.
func EncodeCandyMachine(account *CandyMachineAccount) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(CandyMachineDiscriminator)
	if err := account.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *CandyMachineAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	var err error
	if a.Authority, err = readPublicKey(dec); err != nil {
		return fmt.Errorf("authority: %w", err)
	}
	if a.Wallet, err = readPublicKey(dec); err != nil {
		return fmt.Errorf("wallet: %w", err)
	}

	hasMint, err := dec.ReadOption()
	if err != nil {
		return fmt.Errorf("token_mint: %w", err)
	}
	if hasMint {
		mint, err := readPublicKey(dec)
		if err != nil {
			return fmt.Errorf("token_mint: %w", err)
		}
		a.TokenMint = &mint
	}

	if a.Config, err = readPublicKey(dec); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if a.Data.UUID, err = dec.ReadRustString(); err != nil {
		return fmt.Errorf("data.uuid: %w", err)
	}
	if a.Data.Price, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("data.price: %w", err)
	}
	if a.Data.ItemsAvailable, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("data.items_available: %w", err)
	}

	hasGoLive, err := dec.ReadOption()
	if err != nil {
		return fmt.Errorf("data.go_live_date: %w", err)
	}
	if hasGoLive {
		goLive, err := dec.ReadInt64(binary.LittleEndian)
		if err != nil {
			return fmt.Errorf("data.go_live_date: %w", err)
		}
		a.Data.GoLiveDate = &goLive
	}

	if a.ItemsRedeemed, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("items_redeemed: %w", err)
	}
	if a.Bump, err = dec.ReadUint8(); err != nil {
		return fmt.Errorf("bump: %w", err)
	}
	return nil
}

func (a *CandyMachineAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	if _, err := enc.Write(a.Authority[:]); err != nil {
		return err
	}
	if _, err := enc.Write(a.Wallet[:]); err != nil {
		return err
	}
	if err := enc.WriteOption(a.TokenMint != nil); err != nil {
		return err
	}
	if a.TokenMint != nil {
		if _, err := enc.Write(a.TokenMint[:]); err != nil {
			return err
		}
	}
	if _, err := enc.Write(a.Config[:]); err != nil {
		return err
	}
	if err := enc.WriteRustString(a.Data.UUID); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Data.Price, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Data.ItemsAvailable, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteOption(a.Data.GoLiveDate != nil); err != nil {
		return err
	}
	if a.Data.GoLiveDate != nil {
		if err := enc.WriteInt64(*a.Data.GoLiveDate, binary.LittleEndian); err != nil {
			return err
		}
	}
	if err := enc.WriteUint64(a.ItemsRedeemed, binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteUint8(a.Bump)
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}
