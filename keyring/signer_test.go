package keyring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightring/lightring/keyring"
	"github.com/lightring/lightring/types"
)

func mkTx(inputs int) *types.Transaction {
	tx := &types.Transaction{}
	for i := 0; i < inputs; i++ {
		tx.Inputs = append(tx.Inputs, types.CellInput{
			PreviousOutput: types.OutPoint{TxHash: types.LedgerHash([]byte{byte(i)}), Index: 0},
		})
	}
	tx.Outputs = []types.CellOutput{{Capacity: 100}}
	tx.OutputsData = [][]byte{{}}
	return tx
}

func TestSignTransaction(t *testing.T) {
	key, err := keyring.NewKeyPair()
	require.NoError(t, err)
	lock := key.Address(keyring.NetworkDevnet).LockScript()

	tx := mkTx(2)
	consumed := []types.CellOutput{
		{Capacity: 50, Lock: lock},
		{Capacity: 60, Lock: lock},
	}

	signed, err := keyring.SignTransaction(tx, consumed, key, keyring.NetworkDevnet)
	require.NoError(t, err)

	require.Len(t, signed.Witnesses, 2)
	assert.Len(t, signed.Witnesses[0], 65)
	assert.Empty(t, signed.Witnesses[1])
	assert.True(t, keyring.VerifyTransaction(signed, key))

	// The original transaction is untouched.
	assert.Empty(t, tx.Witnesses)
}

func TestSignTransaction_MixedLockGroups(t *testing.T) {
	key, err := keyring.NewKeyPair()
	require.NoError(t, err)
	lock := key.Address(keyring.NetworkDevnet).LockScript()
	foreign := types.Script{CodeHash: types.LedgerHash([]byte("ring-lock")), HashType: types.HashTypeType}

	tx := mkTx(3)
	// The assembler parks the proof payload past the input witnesses.
	proof := []byte{0xde, 0xad, 0xbe, 0xef}
	tx.Witnesses = [][]byte{{}, {}, {}, proof}

	consumed := []types.CellOutput{
		{Capacity: 50, Lock: foreign},
		{Capacity: 60, Lock: foreign},
		{Capacity: 70, Lock: lock},
	}

	signed, err := keyring.SignTransaction(tx, consumed, key, keyring.NetworkDevnet)
	require.NoError(t, err)

	// The signature rides in the first witness of the key's lock group;
	// foreign-lock inputs keep empty witnesses and the proof survives.
	require.Len(t, signed.Witnesses, 4)
	assert.Empty(t, signed.Witnesses[0])
	assert.Empty(t, signed.Witnesses[1])
	assert.Len(t, signed.Witnesses[2], 65)
	assert.Equal(t, proof, signed.Witnesses[3])
	assert.True(t, keyring.VerifyTransaction(signed, key))
}

func TestSignTransaction_NoOwnedInput(t *testing.T) {
	key, err := keyring.NewKeyPair()
	require.NoError(t, err)
	foreign := types.Script{CodeHash: types.LedgerHash([]byte("ring-lock")), HashType: types.HashTypeType}

	tx := mkTx(1)
	_, err = keyring.SignTransaction(tx, []types.CellOutput{{Lock: foreign}}, key, keyring.NetworkDevnet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by the signing key")
}

func TestSignTransaction_ConsumedMismatch(t *testing.T) {
	key, err := keyring.NewKeyPair()
	require.NoError(t, err)

	tx := mkTx(2)
	_, err = keyring.SignTransaction(tx, nil, key, keyring.NetworkDevnet)
	require.Error(t, err)
}

func TestVerifyTransaction_RejectsTampering(t *testing.T) {
	key, err := keyring.NewKeyPair()
	require.NoError(t, err)
	lock := key.Address(keyring.NetworkDevnet).LockScript()

	tx := mkTx(1)
	signed, err := keyring.SignTransaction(tx, []types.CellOutput{{Capacity: 50, Lock: lock}}, key, keyring.NetworkDevnet)
	require.NoError(t, err)
	require.True(t, keyring.VerifyTransaction(signed, key))

	signed.Outputs[0].Capacity = 999
	assert.False(t, keyring.VerifyTransaction(signed, key))
}
