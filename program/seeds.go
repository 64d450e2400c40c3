package program

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// StakeSeed prefixes every controlling address derived by the restake program.
const StakeSeed = "stake"

// SignerSeeds is the recipe of a program derived address: the deriving program, the
// ordered seeds and the bump that pushes the address off the ed25519 curve.
//
// A program proves it controls the address by handing this recipe to the host, which
// recomputes the address under the calling program's id. No private key exists.
type SignerSeeds struct {
	ProgramID solana.PublicKey `json:"program_id"`
	Seeds     [][]byte         `json:"seeds"`
	Bump      uint8            `json:"bump"`
}

// NewSignerSeeds searches the canonical bump for the seeds under programID.
func NewSignerSeeds(programID solana.PublicKey, seeds ...[]byte) (SignerSeeds, solana.PublicKey, error) {
	recipe := SignerSeeds{
		ProgramID: programID,
		Seeds:     seeds,
	}
	address, bump, err := recipe.Derive()
	if err != nil {
		return SignerSeeds{}, solana.PublicKey{}, err
	}
	recipe.Bump = bump
	return recipe, address, nil
}

// Derive returns the address and canonical bump for the recipe's seeds, ignoring the
// bump currently set on the recipe.
func (s SignerSeeds) Derive() (solana.PublicKey, uint8, error) {
	seeds := make([][]byte, len(s.Seeds), len(s.Seeds)+1)
	copy(seeds, s.Seeds)
	address, bump, err := solana.FindProgramAddress(seeds, s.ProgramID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	return address, bump, nil
}

// WithBump returns the full seed sequence, bump included, as used for signing.
func (s SignerSeeds) WithBump() [][]byte {
	seeds := make([][]byte, 0, len(s.Seeds)+1)
	seeds = append(seeds, s.Seeds...)
	return append(seeds, []byte{s.Bump})
}

// Address reproduces the address the recipe signs for.
func (s SignerSeeds) Address() (solana.PublicKey, error) {
	address, err := solana.CreateProgramAddress(s.WithBump(), s.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	return address, nil
}

// ControllingAddress derives the address that must hold staker authority over a stake
// account before the restake program can move it to voteAccount and hand it to target.
func ControllingAddress(programID solana.PublicKey, voteAccount solana.PublicKey, target solana.PublicKey) (solana.PublicKey, SignerSeeds, error) {
	recipe, address, err := NewSignerSeeds(programID, []byte(StakeSeed), voteAccount[:], target[:])
	if err != nil {
		return solana.PublicKey{}, SignerSeeds{}, err
	}
	return address, recipe, nil
}
