package restake_test

import (
	"encoding/json"

	. "github.com/cordialsys/restake"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func (s *RestakeTestSuite) TestNewAmountBlockchainFromUint64() {
	require := s.Require()
	amount := NewAmountBlockchainFromUint64(123)
	require.Equal(amount.Uint64(), uint64(123))
	require.Equal(amount.String(), "123")
}

func (s *RestakeTestSuite) TestAmountHumanReadable() {
	require := s.Require()
	amountDec, _ := decimal.NewFromString("10.3")
	amount := AmountHumanReadable(amountDec)
	require.Equal(amount.String(), "10.3")
}

func (s *RestakeTestSuite) TestNewAmountHumanReadableFromStr() {
	require := s.Require()
	amount, err := NewAmountHumanReadableFromStr("10.3")
	require.NoError(err)
	require.Equal(amount.String(), "10.3")

	amount, err = NewAmountHumanReadableFromStr("")
	require.Error(err)
	require.Equal(amount.String(), "0")

	_, err = NewAmountHumanReadableFromStr("invalid")
	require.Error(err)
}

func (s *RestakeTestSuite) TestNewBlockchainAmountStr() {
	require := s.Require()
	amount := NewAmountBlockchainFromStr("10")
	require.EqualValues(amount.Uint64(), 10)

	amount = NewAmountBlockchainFromStr("10.1")
	require.EqualValues(amount.Uint64(), 0)

	amount = NewAmountBlockchainFromStr("0x10")
	require.EqualValues(amount.Uint64(), 16)
}

func (s *RestakeTestSuite) TestSolConversion() {
	require := s.Require()
	lamports := NewAmountBlockchainFromUint64(2_282_880)
	require.Equal("0.00228288", lamports.ToSol().String())

	sol, err := NewAmountHumanReadableFromStr("1.5")
	require.NoError(err)
	require.EqualValues(1_500_000_000, sol.ToLamports().Uint64())

	reserve := NewAmountBlockchainFromUint64(2_282_880)
	balance := NewAmountBlockchainFromUint64(1_002_282_880)
	delegated := balance.Sub(&reserve)
	require.EqualValues(1_000_000_000, delegated.Uint64())
	require.Equal(1, balance.Cmp(&reserve))
}

func (s *RestakeTestSuite) TestAmountSerialization() {
	require := s.Require()
	amount := NewAmountBlockchainFromUint64(42)
	bz, err := json.Marshal(amount)
	require.NoError(err)
	require.Equal(`"42"`, string(bz))

	var decoded AmountBlockchain
	require.NoError(json.Unmarshal(bz, &decoded))
	require.EqualValues(42, decoded.Uint64())
	require.Error(json.Unmarshal([]byte(`"x"`), &decoded))

	human, _ := NewAmountHumanReadableFromStr("0.25")
	out, err := yaml.Marshal(map[string]AmountHumanReadable{"amount": human})
	require.NoError(err)
	require.Equal("amount: \"0.25\"\n", string(out))

	var back map[string]AmountHumanReadable
	require.NoError(yaml.Unmarshal(out, &back))
	require.Equal("0.25", back["amount"].String())
}
