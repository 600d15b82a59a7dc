package tokens

import "github.com/alphabill-org/auctionhouse/types"

const MetadataPrefix = "metadata"

// AssociatedTokenAddress is the canonical token account of owner for mint.
func AssociatedTokenAddress(owner, mint types.Address) types.Address {
	addr, _ := types.MustFindProgramAddress(
		[][]byte{owner.Bytes(), types.TokenProgramID.Bytes(), mint.Bytes()},
		types.AssociatedTokenProgramID,
	)
	return addr
}

// MetadataAddress is the address of the metadata account of mint.
func MetadataAddress(mint types.Address) types.Address {
	addr, _ := types.MustFindProgramAddress(
		[][]byte{[]byte(MetadataPrefix), types.MetadataProgramID.Bytes(), mint.Bytes()},
		types.MetadataProgramID,
	)
	return addr
}
