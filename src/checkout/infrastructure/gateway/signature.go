package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader es el header que el gateway firma en cada entrega
const SignatureHeader = "Stripe-Signature"

// Tolerancia por defecto entre el timestamp firmado y el reloj local
const DefaultSignatureTolerance = 5 * time.Minute

// VerifySignature valida la firma criptográfica de un webhook contra el
// secreto compartido y el payload crudo. El esquema es el del gateway:
// header "t=<unix>,v1=<hex>" donde v1 = HMAC-SHA256(secret, "<unix>.<payload>").
// La confianza del endpoint se establece acá, no por cookie de sesión.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	// Rechazar timestamps fuera de tolerancia (protección contra replay)
	age := time.Since(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return ErrSignatureExpired
	}

	expected := computeSignature(payload, secret, timestamp)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrSignatureInvalid
}

// SignPayload genera un header de firma válido (usado por el emisor y
// por los tests que simulan entregas del gateway)
func SignPayload(payload []byte, secret string, at time.Time) string {
	timestamp := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", timestamp, computeSignature(payload, secret, timestamp))
}

func computeSignature(payload []byte, secret string, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrMalformedSignature
	}

	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			return 0, nil, ErrMalformedSignature
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrMalformedSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrMalformedSignature
	}

	return timestamp, signatures, nil
}
