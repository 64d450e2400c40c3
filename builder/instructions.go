package builder

import (
	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/program"
	"github.com/cordialsys/restake/sysvar"
	"github.com/gagliardetto/solana-go"
)

// RestakeInstruction calls the restake program. Nobody in particular needs to sign it:
// the program signs for the controlling address itself.
type RestakeInstruction struct {
	programID solana.PublicKey
	request   *program.Request

	// [0] = [WRITE] stake account
	// [1] = [] vote account
	// [2] = [] clock sysvar
	// [3] = [] stake history sysvar
	// [4] = [] stake config
	// [5] = [] controlling address, the current staker
	// [6] = [] stake program
	solana.AccountMetaSlice
}

var _ solana.Instruction = &RestakeInstruction{}

func NewRestakeInstruction(programID, stakeAccount, voteAccount, target solana.PublicKey) (*RestakeInstruction, error) {
	controlling, _, err := program.ControllingAddress(programID, voteAccount, target)
	if err != nil {
		return nil, err
	}
	return &RestakeInstruction{
		programID: programID,
		request:   program.NewStakeRequest(target),
		AccountMetaSlice: solana.AccountMetaSlice{
			solana.Meta(stakeAccount).WRITE(),
			solana.Meta(voteAccount),
			solana.Meta(sysvar.ClockID),
			solana.Meta(sysvar.StakeHistoryID),
			solana.Meta(stakeix.ConfigID),
			solana.Meta(controlling),
			solana.Meta(stakeix.ProgramID),
		},
	}, nil
}

func (inst *RestakeInstruction) ProgramID() solana.PublicKey {
	return inst.programID
}

func (inst *RestakeInstruction) Accounts() []*solana.AccountMeta {
	return inst.AccountMetaSlice
}

func (inst *RestakeInstruction) Data() ([]byte, error) {
	return inst.request.Encode()
}

// HandoffInstructions move staker authority of stakeAccount from owner to the
// controlling address for (voteAccount, target). With deactivate set, the stake is
// deactivated first so it can be restaked once the cooldown completes.
func HandoffInstructions(programID, stakeAccount, owner, voteAccount, target solana.PublicKey, deactivate bool) ([]solana.Instruction, error) {
	controlling, _, err := program.ControllingAddress(programID, voteAccount, target)
	if err != nil {
		return nil, err
	}
	instructions := []solana.Instruction{}
	if deactivate {
		instructions = append(instructions, stakeix.NewDeactivateInstruction(stakeAccount, owner))
	}
	instructions = append(instructions,
		stakeix.NewAuthorizeInstruction(stakeAccount, owner, controlling, stakeix.AuthorizeStaker),
	)
	return instructions, nil
}
