package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test_secret"

func TestVerifySignatureAcceptsValidHeader(t *testing.T) {
	payload := []byte(`{"id": "evt_1", "type": "payment_intent.succeeded"}`)
	header := SignPayload(payload, testSecret, time.Now())

	err := VerifySignature(payload, header, testSecret, DefaultSignatureTolerance)
	assert.NoError(t, err)
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"id": "evt_1"}`)
	header := SignPayload(payload, testSecret, time.Now())

	err := VerifySignature([]byte(`{"id": "evt_2"}`), header, testSecret, DefaultSignatureTolerance)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id": "evt_1"}`)
	header := SignPayload(payload, "whsec_other", time.Now())

	err := VerifySignature(payload, header, testSecret, DefaultSignatureTolerance)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id": "evt_1"}`)
	header := SignPayload(payload, testSecret, time.Now().Add(-10*time.Minute))

	err := VerifySignature(payload, header, testSecret, DefaultSignatureTolerance)
	assert.ErrorIs(t, err, ErrSignatureExpired)
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	payload := []byte(`{"id": "evt_1"}`)

	for _, header := range []string{"", "garbage", "t=abc,v1=def", "t=123"} {
		err := VerifySignature(payload, header, testSecret, DefaultSignatureTolerance)
		assert.ErrorIs(t, err, ErrMalformedSignature, "header %q", header)
	}
}

func TestVerifySignatureAcceptsAnyValidV1(t *testing.T) {
	payload := []byte(`{"id": "evt_1"}`)
	valid := SignPayload(payload, testSecret, time.Now())

	// Header con una firma vieja y una válida (rotación de secretos)
	header := valid + ",v1=deadbeef"
	err := VerifySignature(payload, header, testSecret, DefaultSignatureTolerance)
	assert.NoError(t, err)
}
