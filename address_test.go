package restake_test

import (
	. "github.com/cordialsys/restake"
	"github.com/gagliardetto/solana-go"
)

func (s *RestakeTestSuite) TestValidateAddress() {
	require := s.Require()
	require.NoError(ValidateAddress("Stake11111111111111111111111111111111111111"))
	require.NoError(ValidateAddress("83wDqn8DFg5oh1WetQJwcyZySjxGkxWVKf3p39T6GMQH"))

	require.Error(ValidateAddress(""))
	require.Error(ValidateAddress("0OIl"))
	// too short
	require.Error(ValidateAddress("83wDqn8DFg5oh1WetQJwcyZ"))
}

func (s *RestakeTestSuite) TestAddressPublicKey() {
	require := s.Require()
	key := solana.MustPublicKeyFromBase58("83wDqn8DFg5oh1WetQJwcyZySjxGkxWVKf3p39T6GMQH")
	address, err := AddressFromPublicKey(key[:])
	require.NoError(err)
	require.Equal(Address(key.String()), address)

	pk, err := address.PublicKey()
	require.NoError(err)
	require.Equal(key, pk)

	_, err = AddressFromPublicKey([]byte{1, 2, 3})
	require.Error(err)
}
