// Package sysvar holds the addresses and codecs of the cluster sysvar accounts the
// stake program reads.
package sysvar

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	// Owner of every sysvar account
	OwnerID = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")

	ClockID        = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	RentID         = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	StakeHistoryID = solana.MustPublicKeyFromBase58("SysvarStakeHistory1111111111111111111111111")
)

const (
	ClockSize = 40
	RentSize  = 17
	// Only the most recent entries are kept
	MaxStakeHistoryEntries = 512
)

type Clock struct {
	Slot                uint64 `json:"slot"`
	EpochStartTimestamp int64  `json:"epoch_start_timestamp"`
	Epoch               uint64 `json:"epoch"`
	LeaderScheduleEpoch uint64 `json:"leader_schedule_epoch"`
	UnixTimestamp       int64  `json:"unix_timestamp"`
}

func (clock *Clock) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if clock.Slot, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if clock.EpochStartTimestamp, err = decoder.ReadInt64(bin.LE); err != nil {
		return err
	}
	if clock.Epoch, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if clock.LeaderScheduleEpoch, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	clock.UnixTimestamp, err = decoder.ReadInt64(bin.LE)
	return err
}

func (clock *Clock) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint64(clock.Slot, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteInt64(clock.EpochStartTimestamp, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint64(clock.Epoch, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint64(clock.LeaderScheduleEpoch, bin.LE); err != nil {
		return err
	}
	return encoder.WriteInt64(clock.UnixTimestamp, bin.LE)
}

func DecodeClock(data []byte) (*Clock, error) {
	if len(data) < ClockSize {
		return nil, fmt.Errorf("clock sysvar too short: %d bytes", len(data))
	}
	clock := &Clock{}
	if err := clock.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return clock, nil
}

func (clock *Clock) Encode() ([]byte, error) {
	return encode(clock)
}

// Rent parameters. Only exemption is modelled; nothing is ever collected.
type Rent struct {
	LamportsPerByteYear uint64  `json:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `json:"exemption_threshold"`
	BurnPercent         uint8   `json:"burn_percent"`
}

// Bytes charged on top of the data length of every account.
const AccountStorageOverhead = 128

func DefaultRent() *Rent {
	return &Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
		BurnPercent:         50,
	}
}

// MinimumBalance is the rent exempt balance for an account holding dataLen bytes.
func (rent *Rent) MinimumBalance(dataLen int) uint64 {
	bytesYear := uint64(AccountStorageOverhead+dataLen) * rent.LamportsPerByteYear
	return uint64(float64(bytesYear) * rent.ExemptionThreshold)
}

func (rent *Rent) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if rent.LamportsPerByteYear, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if rent.ExemptionThreshold, err = decoder.ReadFloat64(bin.LE); err != nil {
		return err
	}
	rent.BurnPercent, err = decoder.ReadUint8()
	return err
}

func (rent *Rent) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint64(rent.LamportsPerByteYear, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteFloat64(rent.ExemptionThreshold, bin.LE); err != nil {
		return err
	}
	return encoder.WriteUint8(rent.BurnPercent)
}

func DecodeRent(data []byte) (*Rent, error) {
	if len(data) < RentSize {
		return nil, fmt.Errorf("rent sysvar too short: %d bytes", len(data))
	}
	rent := &Rent{}
	if err := rent.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return rent, nil
}

func (rent *Rent) Encode() ([]byte, error) {
	return encode(rent)
}

type StakeHistoryEntry struct {
	Epoch        uint64 `json:"epoch"`
	Effective    uint64 `json:"effective"`
	Activating   uint64 `json:"activating"`
	Deactivating uint64 `json:"deactivating"`
}

// StakeHistory is ordered newest epoch first.
type StakeHistory []StakeHistoryEntry

func (history *StakeHistory) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	count, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	if count > MaxStakeHistoryEntries {
		return fmt.Errorf("stake history has %d entries, more than %d", count, MaxStakeHistoryEntries)
	}
	entries := make(StakeHistory, count)
	for i := range entries {
		entry := &entries[i]
		if entry.Epoch, err = decoder.ReadUint64(bin.LE); err != nil {
			return err
		}
		if entry.Effective, err = decoder.ReadUint64(bin.LE); err != nil {
			return err
		}
		if entry.Activating, err = decoder.ReadUint64(bin.LE); err != nil {
			return err
		}
		if entry.Deactivating, err = decoder.ReadUint64(bin.LE); err != nil {
			return err
		}
	}
	*history = entries
	return nil
}

func (history StakeHistory) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint64(uint64(len(history)), bin.LE); err != nil {
		return err
	}
	for _, entry := range history {
		for _, v := range []uint64{entry.Epoch, entry.Effective, entry.Activating, entry.Deactivating} {
			if err := encoder.WriteUint64(v, bin.LE); err != nil {
				return err
			}
		}
	}
	return nil
}

func DecodeStakeHistory(data []byte) (StakeHistory, error) {
	history := StakeHistory{}
	if err := history.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return history, nil
}

func (history StakeHistory) Encode() ([]byte, error) {
	return encode(history)
}

// Add records an entry for a new epoch at the front, dropping the oldest entries.
func (history StakeHistory) Add(entry StakeHistoryEntry) StakeHistory {
	updated := append(StakeHistory{entry}, history...)
	if len(updated) > MaxStakeHistoryEntries {
		updated = updated[:MaxStakeHistoryEntries]
	}
	return updated
}

func (history StakeHistory) Get(epoch uint64) (StakeHistoryEntry, bool) {
	for _, entry := range history {
		if entry.Epoch == epoch {
			return entry, true
		}
	}
	return StakeHistoryEntry{}, false
}

type marshaler interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func encode(v marshaler) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := v.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
