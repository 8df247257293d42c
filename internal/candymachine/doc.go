// Package candymachine talks to a candy machine v1 sale contract on Solana.
//
// This package provides:
// - SaleConfig: immutable sale parameters loaded once at start.
// - StateReader: decodes the candy machine account into a SaleState snapshot.
// - Builder: assembles the unsigned purchase transaction (mint account setup,
//   payment transfer and the mint_nft call).
// - Classify: maps any purchase error onto a small FailureKind taxonomy.
//
// Files:
//   - config.go: program addresses, on-chain error codes, SaleConfig.
//   - account.go: Borsh layout of the candy machine account.
//   - state.go: StateReader and SaleState.
//   - instructions.go: mint_nft instruction and PDA helpers.
//   - builder.go: PurchaseRequest and Builder.
//   - classify.go: FailureKind and Classify.
//   - errors.go: ReadError and BuildError.
//
// Usage example:
//
//	reader := candymachine.NewStateReader(client, saleCfg, logger)
//	state, err := reader.Read(ctx, saleCfg.CandyMachine)
//	if err != nil {
//	    return err
//	}
//	if state.SoldOut() {
//	    return nil
//	}
package candymachine
