package editiontx_test

import (
	"testing"

	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeSender(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	tx := &editiontx.EditionTransaction{
		Nonce: 3,
		Buy:   []editiontx.Buy{{EditionID: uint256.NewInt(1), Payment: uint256.NewInt(100)}},
	}

	env, err := editiontx.SignTransaction(tx, key)
	require.NoError(t, err)

	sender, err := env.Sender()
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sender)

	t.Run("wire round trip keeps the signature valid", func(t *testing.T) {
		d, err := editiontx.EncodeEnvelope(env)
		require.NoError(t, err)

		decoded, err := editiontx.DecodeEnvelope(d)
		require.NoError(t, err)
		require.Equal(t, env.Hash(), decoded.Hash())

		got, err := decoded.Transaction()
		require.NoError(t, err)
		require.Equal(t, uint64(3), got.Nonce)
		require.Equal(t, uint256.NewInt(100), got.Buy[0].Payment)
	})

	t.Run("tampered payload recovers another sender", func(t *testing.T) {
		other, err := editiontx.Pack(&editiontx.EditionTransaction{Nonce: 4})
		require.NoError(t, err)

		forged := &editiontx.Envelope{Kind: env.Kind, Payload: other, Signature: env.Signature}
		sender, err := forged.Sender()
		if err == nil {
			require.NotEqual(t, crypto.PubkeyToAddress(key.PublicKey), sender)
		}
	})

	t.Run("kind is part of the signed digest", func(t *testing.T) {
		relabelled := &editiontx.Envelope{Kind: editiontx.KindQuery, Payload: env.Payload, Signature: env.Signature}
		sender, err := relabelled.Sender()
		if err == nil {
			require.NotEqual(t, crypto.PubkeyToAddress(key.PublicKey), sender)
		}

		_, err = env.Query()
		require.ErrorIs(t, err, editiontx.ErrWrongEnvelopeKind)
	})

	t.Run("short signature", func(t *testing.T) {
		_, err := (&editiontx.Envelope{Kind: editiontx.KindTransaction, Payload: env.Payload}).Sender()
		require.ErrorIs(t, err, editiontx.ErrInvalidSignature)
	})
}

func TestUnpackRejectsGarbage(t *testing.T) {
	err := editiontx.Unpack([]byte("definitely not brotli"), &editiontx.EditionTransaction{})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, (&editiontx.EditionTransaction{Nonce: 1}).Validate(), editiontx.ErrEmptyTransaction)

	require.Error(t, (&editiontx.EditionTransaction{
		Buy: []editiontx.Buy{{EditionID: uint256.NewInt(1)}},
	}).Validate())

	require.Error(t, (&editiontx.EditionTransaction{
		Registry: []editiontx.RegistryChange{{Kind: crypto.Keccak256Hash([]byte("other"))}},
	}).Validate())

	require.NoError(t, (&editiontx.EditionTransaction{
		Withdraw: []*uint256.Int{uint256.NewInt(1)},
	}).Validate())
}

func TestTotalPaymentOverflow(t *testing.T) {
	maxU256 := new(uint256.Int).SetAllOne()
	tx := &editiontx.EditionTransaction{
		Buy: []editiontx.Buy{
			{EditionID: uint256.NewInt(1), Payment: maxU256},
			{EditionID: uint256.NewInt(1), Payment: uint256.NewInt(1)},
		},
	}

	_, err := tx.TotalPayment()
	require.Error(t, err)
}
