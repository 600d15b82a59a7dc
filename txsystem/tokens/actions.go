package tokens

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/types"
)

/*
TransferAction moves amount tokens from source to destination. Authority must
be either the owner of the source or its delegate, in the latter case the
delegated amount is decreased. Verifying the authority signature is the
caller's job.
*/
func TransferAction(source, destination, authority types.Address, amount uint64) state.Action {
	return func(s state.LedgerState) error {
		src, err := getTokenAccount(s, source)
		if err != nil {
			return fmt.Errorf("transfer source: %w", err)
		}
		dst, err := getTokenAccount(s, destination)
		if err != nil {
			return fmt.Errorf("transfer destination: %w", err)
		}
		if src.Mint != dst.Mint {
			return fmt.Errorf("%w: source %s, destination %s", ErrMintMismatch, src.Mint, dst.Mint)
		}
		if src.Amount < amount {
			return fmt.Errorf("%w: account %s has %d, needs %d", ErrInsufficientTokens, source, src.Amount, amount)
		}
		useDelegate := false
		switch {
		case authority == src.Owner:
		case src.HasDelegate() && authority == src.Delegate:
			if src.DelegatedAmount < amount {
				return fmt.Errorf("%w: delegated amount %d, needs %d", ErrInsufficientTokens, src.DelegatedAmount, amount)
			}
			useDelegate = true
		default:
			return fmt.Errorf("%w: %s", ErrNotAuthorized, authority)
		}
		if source == destination {
			return nil
		}
		if err := updateTokenAccount(source, func(ta *TokenAccount) error {
			ta.Amount -= amount
			if useDelegate {
				ta.DelegatedAmount -= amount
				if ta.DelegatedAmount == 0 {
					ta.Delegate = types.Address{}
				}
			}
			return nil
		})(s); err != nil {
			return err
		}
		return updateTokenAccount(destination, func(ta *TokenAccount) error {
			if ta.Amount+amount < ta.Amount {
				return errors.New("token amount overflow")
			}
			ta.Amount += amount
			return nil
		})(s)
	}
}

// ApproveAction lets delegate move up to amount tokens of the account. Replaces the previous delegate.
func ApproveAction(account, delegate types.Address, amount uint64) state.Action {
	return updateTokenAccount(account, func(ta *TokenAccount) error {
		if delegate.IsZero() {
			return errors.New("delegate address is zero")
		}
		ta.Delegate = delegate
		ta.DelegatedAmount = amount
		return nil
	})
}

func RevokeAction(account types.Address) state.Action {
	return updateTokenAccount(account, func(ta *TokenAccount) error {
		ta.Delegate = types.Address{}
		ta.DelegatedAmount = 0
		return nil
	})
}

/*
CreateAssociatedAccountAction creates the associated token account of owner for
mint, the rent is paid by payer. Does nothing when the account already exists.
*/
func CreateAssociatedAccountAction(payer, owner, mint types.Address) state.Action {
	return func(s state.LedgerState) error {
		addr := AssociatedTokenAddress(owner, mint)
		acc, err := s.Get(addr)
		if err != nil && !errors.Is(err, state.ErrAccountNotFound) {
			return err
		}
		if acc.HasData() {
			ta, err := DecodeTokenAccount(acc)
			if err != nil {
				return fmt.Errorf("associated token account %s: %w", addr, err)
			}
			if ta.Owner != owner || ta.Mint != mint {
				return fmt.Errorf("%w: associated token account %s", ErrInvalidAccountData, addr)
			}
			return nil
		}
		mintAcc, err := s.Get(mint)
		if err != nil {
			return fmt.Errorf("mint: %w", err)
		}
		if _, err := DecodeMint(mintAcc); err != nil {
			return fmt.Errorf("mint %s: %w", mint, err)
		}
		data, err := types.Cbor.Marshal(NewTokenAccount(mint, owner, 0))
		if err != nil {
			return fmt.Errorf("encoding token account: %w", err)
		}
		var balance uint64
		if acc != nil {
			balance = acc.Lamports
		}
		if rent := types.RentExemptMinimum(len(data)); balance < rent {
			if err := state.Transfer(payer, addr, rent-balance)(s); err != nil {
				return fmt.Errorf("paying rent: %w", err)
			}
		}
		return state.AllocateAccount(addr, types.TokenProgramID, data)(s)
	}
}

func getTokenAccount(s state.LedgerState, addr types.Address) (*TokenAccount, error) {
	acc, err := s.Get(addr)
	if err != nil {
		return nil, err
	}
	return DecodeTokenAccount(acc)
}

func updateTokenAccount(addr types.Address, f func(ta *TokenAccount) error) state.Action {
	return func(s state.LedgerState) error {
		acc, err := s.Get(addr)
		if err != nil {
			return fmt.Errorf("token account: %w", err)
		}
		ta, err := DecodeTokenAccount(acc)
		if err != nil {
			return fmt.Errorf("token account %s: %w", addr, err)
		}
		return state.UpdateData(addr, func([]byte) ([]byte, error) {
			if err := f(ta); err != nil {
				return nil, err
			}
			return types.Cbor.Marshal(ta)
		})(s)
	}
}
