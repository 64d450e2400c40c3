package restake_test

import (
	"github.com/cordialsys/restake"
	"github.com/shopspring/decimal"
)

func (s *RestakeTestSuite) TestPriority() {
	require := s.Require()
	type testcase struct {
		input   string
		custom  bool
		decimal decimal.Decimal
		err     string
		valid   bool
	}
	vectors := []testcase{
		{input: "low", valid: true},
		{input: "market", valid: true},
		{input: "aggressive", valid: true},
		{input: "very-aggressive", valid: true},
		{
			input:  "random",
			custom: true,
			err:    "invalid",
		},
		{
			input:   "1.2",
			custom:  true,
			decimal: decimal.NewFromFloat(1.2),
			valid:   true,
		},
		{
			input:  "1.2.3",
			custom: true,
			err:    "invalid",
		},
		{
			input:  "-1",
			custom: true,
			err:    "must not be negative",
		},
		{
			input:  "11.0",
			custom: true,
			err:    "exceeds custom multiplier",
		},
	}

	for _, v := range vectors {
		priority := restake.Priority(v.input)
		require.Equal(v.custom, !priority.IsEnum(), v.input)

		if !priority.IsEnum() {
			dec, err := priority.AsCustom()
			if v.err != "" {
				require.ErrorContains(err, v.err)
			} else {
				require.NoError(err)
				require.Equal(v.decimal.String(), dec.String())
			}
		}

		_, err := restake.NewPriority(v.input)
		if v.valid {
			require.NoError(err, v.input)
		} else {
			require.Error(err, v.input)
		}
	}
}

func (s *RestakeTestSuite) TestNewPriorityEmptyIsMarket() {
	require := s.Require()
	priority, err := restake.NewPriority("")
	require.NoError(err)
	require.Equal(restake.Market, priority)
}

func (s *RestakeTestSuite) TestApplyMultiplier() {
	require := s.Require()
	fee := restake.NewAmountBlockchainFromUint64(1001)
	for _, v := range []struct {
		priority restake.Priority
		expected uint64
	}{
		{"", 1001},
		{restake.Market, 1001},
		{restake.Low, 700},
		{restake.Aggressive, 1501},
		{restake.VeryAggressive, 2002},
		{"0.5", 500},
	} {
		multiplier, err := v.priority.GetDefault()
		require.NoError(err)
		require.EqualValues(v.expected, fee.ApplyMultiplier(multiplier).Uint64(), string(v.priority))
	}
}
