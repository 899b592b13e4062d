package paystack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignatureAcceptsMatchingMAC(t *testing.T) {
	payload := []byte(`{"event":"charge.success","data":{"reference":"ps_u1_1_abcd"}}`)
	sig := ComputeSignature(payload, "sk_test_secret")

	assert.True(t, VerifySignature(payload, sig, "sk_test_secret"))
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	payload := []byte(`{"event":"charge.success","data":{"reference":"ps_u1_1_abcd"}}`)
	sig := ComputeSignature(payload, "sk_test_secret")

	tampered := []byte(`{"event":"charge.success","data":{"reference":"ps_u1_1_efgh"}}`)
	assert.False(t, VerifySignature(tampered, sig, "sk_test_secret"))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"event":"charge.success"}`)
	sig := ComputeSignature(payload, "sk_test_secret")

	assert.False(t, VerifySignature(payload, sig, "sk_other_secret"))
}

func TestVerifySignatureRejectsGarbageSignature(t *testing.T) {
	assert.False(t, VerifySignature([]byte(`{}`), "not-a-mac", "sk_test_secret"))
}
