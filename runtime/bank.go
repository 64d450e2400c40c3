// Package runtime is an in-process bank that executes Solana transactions against
// native programs.
//
// It models what the restake program depends on: an account store, the clock and
// stake history sysvars, fee charging, signature checks, cross-program invocation
// with program derived signers, and all-or-nothing commits.
package runtime

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/program"
	stakeprogram "github.com/cordialsys/restake/runtime/stake"
	"github.com/cordialsys/restake/runtime/system"
	"github.com/cordialsys/restake/sysvar"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/btree"
)

var (
	NativeLoaderID  = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")
	ConfigProgramID = solana.MustPublicKeyFromBase58("Config1111111111111111111111111111111111111")
	ComputeBudgetID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
)

const (
	DefaultSlotsPerEpoch = 32
	// Lamports charged per required signature
	DefaultSignatureFee = 5000
	SlotDuration        = 400 * time.Millisecond
	// Blockhashes older than this many are rejected
	MaxRecentBlockhashes = 150
	MaxInvokeDepth       = 4
)

type Options struct {
	SlotsPerEpoch uint64
	SignatureFee  uint64
	GenesisTime   time.Time
}

func (opts *Options) applyDefaults() {
	if opts.SlotsPerEpoch == 0 {
		opts.SlotsPerEpoch = DefaultSlotsPerEpoch
	}
	if opts.SignatureFee == 0 {
		opts.SignatureFee = DefaultSignatureFee
	}
	if opts.GenesisTime.IsZero() {
		opts.GenesisTime = time.Unix(1_700_000_000, 0)
	}
}

// Bank holds accounts and executes transactions one at a time.
type Bank struct {
	lock     sync.Mutex
	opts     Options
	accounts *btree.Map[string, *program.Account]
	programs map[solana.PublicKey]program.Entrypoint
	slot     uint64

	blockhashes []solana.Hash
	processed   map[solana.Signature]*TransactionResult
}

func NewBank(opts Options) *Bank {
	opts.applyDefaults()
	bank := &Bank{
		opts:      opts,
		accounts:  btree.NewMap[string, *program.Account](32),
		programs:  map[solana.PublicKey]program.Entrypoint{},
		processed: map[solana.Signature]*TransactionResult{},
	}
	bank.RegisterProgram(system.ProgramID, system.NewProgram())
	bank.RegisterProgram(stakeix.ProgramID, stakeprogram.NewProgram())
	bank.RegisterProgram(ComputeBudgetID, computeBudget{})

	rent, err := sysvar.DefaultRent().Encode()
	if err != nil {
		panic(fmt.Sprintf("encoding rent sysvar: %v", err))
	}
	bank.setSysvar(sysvar.RentID, rent)
	history, err := sysvar.StakeHistory{}.Encode()
	if err != nil {
		panic(fmt.Sprintf("encoding stake history sysvar: %v", err))
	}
	bank.setSysvar(sysvar.StakeHistoryID, history)
	bank.accounts.Set(key(stakeix.ConfigID), &program.Account{
		Lamports: 960480,
		Owner:    ConfigProgramID,
		Data:     make([]byte, 10),
	})
	if err := bank.updateClock(); err != nil {
		panic(err)
	}
	bank.newBlockhash()
	return bank
}

// RegisterProgram makes entrypoint callable at programID.
func (b *Bank) RegisterProgram(programID solana.PublicKey, entrypoint program.Entrypoint) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.programs[programID] = entrypoint
	b.accounts.Set(key(programID), &program.Account{
		Lamports:   1,
		Owner:      NativeLoaderID,
		Executable: true,
	})
}

func (b *Bank) SetAccount(address solana.PublicKey, account *program.Account) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.accounts.Set(key(address), account.Clone())
}

// GetAccount returns a copy of the stored account.
func (b *Bank) GetAccount(address solana.PublicKey) (*program.Account, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	acc, ok := b.accounts.Get(key(address))
	if !ok {
		return nil, false
	}
	return acc.Clone(), true
}

func (b *Bank) Balance(address solana.PublicKey) uint64 {
	acc, ok := b.GetAccount(address)
	if !ok {
		return 0
	}
	return acc.Lamports
}

// Airdrop credits lamports, creating a system account if needed.
func (b *Bank) Airdrop(address solana.PublicKey, lamports uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	acc, ok := b.accounts.Get(key(address))
	if ok {
		acc = acc.Clone()
	} else {
		acc = &program.Account{Owner: solana.SystemProgramID}
	}
	acc.Lamports += lamports
	b.accounts.Set(key(address), acc)
}

// StakeState decodes the stake account stored at address.
func (b *Bank) StakeState(address solana.PublicKey) (*stakeix.State, error) {
	acc, ok := b.GetAccount(address)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if acc.Owner != stakeix.ProgramID {
		return nil, fmt.Errorf("%w: %s is not a stake account", program.ErrInvalidAccountOwner, address)
	}
	return stakeix.DecodeState(acc.Data)
}

func (b *Bank) Clock() sysvar.Clock {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.clock()
}

func (b *Bank) SlotsPerEpoch() uint64 {
	return b.opts.SlotsPerEpoch
}

// MinimumBalanceForRentExemption of an account holding dataLen bytes.
func (b *Bank) MinimumBalanceForRentExemption(dataLen int) uint64 {
	return sysvar.DefaultRent().MinimumBalance(dataLen)
}

func (b *Bank) LatestBlockhash() solana.Hash {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.blockhashes[len(b.blockhashes)-1]
}

// WarpToSlot moves the bank forward. Crossing an epoch boundary records the stake
// history of every epoch left behind.
func (b *Bank) WarpToSlot(slot uint64) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.warpToSlot(slot)
}

func (b *Bank) warpToSlot(slot uint64) error {
	if slot <= b.slot {
		return fmt.Errorf("%w: slot %d is not after %d", ErrInvalidWarp, slot, b.slot)
	}
	fromEpoch := b.slot / b.opts.SlotsPerEpoch
	toEpoch := slot / b.opts.SlotsPerEpoch
	for epoch := fromEpoch; epoch < toEpoch; epoch++ {
		if err := b.recordStakeHistory(epoch); err != nil {
			return err
		}
	}
	b.slot = slot
	if err := b.updateClock(); err != nil {
		return err
	}
	b.newBlockhash()
	logrus.WithFields(logrus.Fields{
		"slot":  slot,
		"epoch": toEpoch,
	}).Debug("warped")
	return nil
}

// WarpToEpoch moves the bank to the first slot of epoch.
func (b *Bank) WarpToEpoch(epoch uint64) error {
	return b.WarpToSlot(epoch * b.opts.SlotsPerEpoch)
}

// AdvanceSlot moves forward by one slot, producing a fresh blockhash.
func (b *Bank) AdvanceSlot() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.warpToSlot(b.slot + 1)
}

func (b *Bank) clock() sysvar.Clock {
	epoch := b.slot / b.opts.SlotsPerEpoch
	genesis := b.opts.GenesisTime
	return sysvar.Clock{
		Slot:                b.slot,
		EpochStartTimestamp: genesis.Add(time.Duration(epoch*b.opts.SlotsPerEpoch) * SlotDuration).Unix(),
		Epoch:               epoch,
		LeaderScheduleEpoch: epoch + 1,
		UnixTimestamp:       genesis.Add(time.Duration(b.slot) * SlotDuration).Unix(),
	}
}

func (b *Bank) updateClock() error {
	clock := b.clock()
	data, err := clock.Encode()
	if err != nil {
		return fmt.Errorf("encoding clock sysvar: %w", err)
	}
	b.setSysvar(sysvar.ClockID, data)
	return nil
}

func (b *Bank) setSysvar(address solana.PublicKey, data []byte) {
	b.accounts.Set(key(address), &program.Account{
		Lamports: sysvar.DefaultRent().MinimumBalance(len(data)),
		Owner:    sysvar.OwnerID,
		Data:     data,
	})
}

func (b *Bank) recordStakeHistory(epoch uint64) error {
	entry := sysvar.StakeHistoryEntry{Epoch: epoch}
	iter := b.accounts.Iter()
	for ok := iter.First(); ok; ok = iter.Next() {
		acc := iter.Value()
		if acc.Owner != stakeix.ProgramID {
			continue
		}
		state, err := stakeix.DecodeState(acc.Data)
		if err != nil || state.Kind != stakeix.StateStake {
			continue
		}
		delegation := state.Stake.Delegation
		entry.Effective += delegation.EffectiveStake(epoch)
		switch delegation.ActivationState(epoch) {
		case stakeix.Activating:
			entry.Activating += delegation.Stake
		case stakeix.Deactivating:
			entry.Deactivating += delegation.Stake
		}
	}

	acc, _ := b.accounts.Get(key(sysvar.StakeHistoryID))
	history, err := sysvar.DecodeStakeHistory(acc.Data)
	if err != nil {
		return err
	}
	data, err := history.Add(entry).Encode()
	if err != nil {
		return err
	}
	b.setSysvar(sysvar.StakeHistoryID, data)
	return nil
}

func (b *Bank) newBlockhash() {
	var previous solana.Hash
	if len(b.blockhashes) > 0 {
		previous = b.blockhashes[len(b.blockhashes)-1]
	}
	var slot [8]byte
	binary.LittleEndian.PutUint64(slot[:], b.slot)
	next := solana.Hash(sha256.Sum256(append(previous[:], slot[:]...)))
	b.blockhashes = append(b.blockhashes, next)
	if len(b.blockhashes) > MaxRecentBlockhashes {
		b.blockhashes = b.blockhashes[len(b.blockhashes)-MaxRecentBlockhashes:]
	}
}

func (b *Bank) isRecentBlockhash(hash solana.Hash) bool {
	for _, recent := range b.blockhashes {
		if recent == hash {
			return true
		}
	}
	return false
}

func key(address solana.PublicKey) string {
	return string(address[:])
}

// Compute budget requests are accepted and ignored.
type computeBudget struct{}

func (computeBudget) Process(host program.Host, accounts []*program.AccountInfo, data []byte) error {
	return nil
}
