package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CreateIntentRequest representa el request para crear un payment intent
type CreateIntentRequest struct {
	Amount   int64             `json:"amount"` // unidades menores
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ModifyIntentRequest representa el request para adjuntar metadata
type ModifyIntentRequest struct {
	Metadata map[string]string `json:"metadata"`
}

// PaymentIntentClient cliente HTTP para el gateway de pagos.
// La credencial (API key) se pasa por llamada, nunca como estado global
// del proceso.
type PaymentIntentClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPaymentIntentClient crea una nueva instancia del cliente apuntando a
// la URL configurada; vacía cae al default de stripe-mock local
func NewPaymentIntentClient(baseURL string) *PaymentIntentClient {
	if baseURL == "" {
		baseURL = "http://localhost:12111" // Default para stripe-mock local
	}

	return &PaymentIntentClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// CreateIntent crea un payment intent por el monto indicado.
// La metadata de correlación (bag, username) se adjunta acá, en la
// creación, para que un corte de red antes de confirmar no deje un pago
// sin datos de reconciliación.
func (c *PaymentIntentClient) CreateIntent(apiKey string, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	reqBody := CreateIntentRequest{
		Amount:   amount,
		Currency: currency,
		Metadata: metadata,
	}

	url := fmt.Sprintf("%s/v1/payment_intents", c.baseURL)

	return c.doIntentRequest(apiKey, http.MethodPost, url, reqBody)
}

// ModifyIntent adjunta o actualiza la metadata de un intent existente.
// Debe completarse antes de la confirmación del pago en el cliente.
func (c *PaymentIntentClient) ModifyIntent(apiKey, intentID string, metadata map[string]string) (*PaymentIntent, error) {
	reqBody := ModifyIntentRequest{
		Metadata: metadata,
	}

	url := fmt.Sprintf("%s/v1/payment_intents/%s", c.baseURL, intentID)

	return c.doIntentRequest(apiKey, http.MethodPost, url, reqBody)
}

// GetIntent recupera un intent por su id
func (c *PaymentIntentClient) GetIntent(apiKey, intentID string) (*PaymentIntent, error) {
	url := fmt.Sprintf("%s/v1/payment_intents/%s", c.baseURL, intentID)

	return c.doIntentRequest(apiKey, http.MethodGet, url, nil)
}

// doIntentRequest ejecuta un request contra el gateway y parsea el intent
func (c *PaymentIntentClient) doIntentRequest(apiKey, method, url string, reqBody any) (*PaymentIntent, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	// Credencial por llamada
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	return &intent, nil
}

// SplitClientSecret recupera el intent id de un client secret
// ("pi_xxx_secret_yyy" → "pi_xxx")
func SplitClientSecret(clientSecret string) (string, error) {
	idx := strings.Index(clientSecret, "_secret")
	if idx <= 0 {
		return "", ErrInvalidClientSecret
	}
	return clientSecret[:idx], nil
}
