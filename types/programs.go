package types

// Base58 encoded well known program and mint addresses.
const (
	TokenProgram           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgram = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	MetadataProgram        = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bfW7x1sM"
	AuctionHouseProgram    = "hausS13jsjafwWwGqZTUQRmWyvyxn9EQpqMwV1PBBmk"
	NativeMintAddress      = "So11111111111111111111111111111111111111112"
)

var (
	SystemProgramID          = Address{}
	TokenProgramID           = wellKnown(TokenProgram)
	AssociatedTokenProgramID = wellKnown(AssociatedTokenProgram)
	MetadataProgramID        = wellKnown(MetadataProgram)
	AuctionHouseProgramID    = wellKnown(AuctionHouseProgram)

	// NativeMint is the wrapped native currency mint. Auction houses using it
	// as treasury mint settle in lamports.
	NativeMint = wellKnown(NativeMintAddress)
)

// wellKnown does not panic on a malformed literal so that the package still
// initializes and TestWellKnownAddresses reports the broken one.
func wellKnown(s string) Address {
	a, _ := AddressFromString(s)
	return a
}

// RentExemptMinimum returns the lamports an account holding dataLen bytes must
// keep to be exempt from rent (two years worth of rent).
func RentExemptMinimum(dataLen int) uint64 {
	const (
		accountStorageOverhead = 128
		lamportsPerByteYear    = 3480
		exemptionYears         = 2
	)
	return uint64(accountStorageOverhead+dataLen) * lamportsPerByteYear * exemptionYears
}
