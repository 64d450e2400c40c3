package runtime

import (
	"bytes"
	"fmt"

	"github.com/cordialsys/restake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// frameAccount tracks one account visible to an executing program.
type frameAccount struct {
	account  *program.Account
	pre      *program.Account
	signer   bool
	writable bool
}

type frame struct {
	programID solana.PublicKey
	accounts  map[solana.PublicKey]*frameAccount
}

func newFrame(programID solana.PublicKey, infos []*program.AccountInfo) *frame {
	f := &frame{
		programID: programID,
		accounts:  map[solana.PublicKey]*frameAccount{},
	}
	for _, info := range infos {
		fa, ok := f.accounts[info.Key]
		if !ok {
			fa = &frameAccount{account: info.Account, pre: info.Account.Clone()}
			f.accounts[info.Key] = fa
		}
		fa.signer = fa.signer || info.IsSigner
		fa.writable = fa.writable || info.IsWritable
	}
	return f
}

// verify checks the changes made since the last snapshot against the ownership rules.
func (f *frame) verify() error {
	var before, after uint64
	for address, fa := range f.accounts {
		pre := fa.pre
		post := fa.account
		before += pre.Lamports
		after += post.Lamports
		if pre.Equal(post) {
			continue
		}
		owned := pre.Owner == f.programID
		switch {
		case !fa.writable:
			return fmt.Errorf("%w: %s", program.ErrReadonlyDataModified, address)
		case pre.Executable != post.Executable:
			return fmt.Errorf("%w: %s", ErrExecutableModified, address)
		case pre.Owner != post.Owner && !owned:
			return fmt.Errorf("%w: %s", ErrModifiedProgramID, address)
		case !bytes.Equal(pre.Data, post.Data) && !owned:
			return fmt.Errorf("%w: %s", ErrExternalDataModified, address)
		case post.Lamports < pre.Lamports && !owned:
			return fmt.Errorf("%w: %s", ErrExternalLamportSpend, address)
		}
	}
	if before != after {
		return fmt.Errorf("%w: %d before, %d after", ErrUnbalancedInstruction, before, after)
	}
	return nil
}

func (f *frame) snapshot() {
	for _, fa := range f.accounts {
		fa.pre = fa.account.Clone()
	}
}

// invokeContext is the Host handed to programs for the duration of one transaction.
type invokeContext struct {
	bank  *Bank
	stack []*frame
	logs  []string
}

var _ program.Host = &invokeContext{}

func (c *invokeContext) process(programID solana.PublicKey, infos []*program.AccountInfo, data []byte) error {
	if len(c.stack) >= MaxInvokeDepth {
		return fmt.Errorf("%w: depth %d", program.ErrCallDepth, len(c.stack)+1)
	}
	entrypoint, ok := c.bank.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", program.ErrUnsupportedProgramID, programID)
	}
	f := newFrame(programID, infos)
	c.stack = append(c.stack, f)
	c.logs = append(c.logs, fmt.Sprintf("Program %s invoke [%d]", programID, len(c.stack)))

	err := entrypoint.Process(c, infos, data)
	if err == nil {
		err = f.verify()
	}
	c.stack = c.stack[:len(c.stack)-1]
	if err != nil {
		c.logs = append(c.logs, fmt.Sprintf("Program %s failed: %v", programID, err))
		return err
	}
	c.logs = append(c.logs, fmt.Sprintf("Program %s success", programID))
	return nil
}

// InvokeSigned runs ix on behalf of the executing program. The callee may only be
// granted privileges the caller holds, plus signatures for addresses the caller
// derives from its own program id.
func (c *invokeContext) InvokeSigned(ix solana.Instruction, accounts []*program.AccountInfo, signers ...program.SignerSeeds) error {
	if len(c.stack) == 0 {
		return fmt.Errorf("%w: no executing program", program.ErrPrivilegeEscalation)
	}
	caller := c.stack[len(c.stack)-1]
	if err := caller.verify(); err != nil {
		return err
	}
	caller.snapshot()

	derived := map[solana.PublicKey]bool{}
	for _, seeds := range signers {
		if seeds.ProgramID != caller.programID {
			return fmt.Errorf("%w: %s cannot sign with seeds of %s", program.ErrPrivilegeEscalation, caller.programID, seeds.ProgramID)
		}
		address, err := solana.CreateProgramAddress(seeds.WithBump(), caller.programID)
		if err != nil {
			return fmt.Errorf("%w: %v", program.ErrInvalidSeeds, err)
		}
		derived[address] = true
	}

	provided := map[solana.PublicKey]bool{}
	for _, info := range accounts {
		provided[info.Key] = true
	}
	infos := make([]*program.AccountInfo, 0, len(ix.Accounts()))
	for _, meta := range ix.Accounts() {
		address := meta.PublicKey
		fa, ok := caller.accounts[address]
		if !ok || !provided[address] {
			return fmt.Errorf("%w: %s", program.ErrMissingAccount, address)
		}
		if meta.IsWritable && !fa.writable {
			return fmt.Errorf("%w: %s is not writable", program.ErrPrivilegeEscalation, address)
		}
		if meta.IsSigner && !fa.signer && !derived[address] {
			return fmt.Errorf("%w: %s did not sign", program.ErrPrivilegeEscalation, address)
		}
		infos = append(infos, &program.AccountInfo{
			Key:        address,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Account:    fa.account,
		})
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %v", program.ErrInvalidInstructionData, err)
	}
	if err := c.process(ix.ProgramID(), infos, data); err != nil {
		return err
	}
	caller.snapshot()
	return nil
}

func (c *invokeContext) Log(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	c.logs = append(c.logs, "Program log: "+line)
	logrus.WithField("depth", len(c.stack)).Debug(line)
}
