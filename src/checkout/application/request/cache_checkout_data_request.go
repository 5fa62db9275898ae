package request

// CacheCheckoutDataRequest representa el request del side-channel que
// adjunta la metadata de correlación al intent antes de confirmar el pago
type CacheCheckoutDataRequest struct {
	ClientSecret string `json:"client_secret" binding:"required"`
	SaveInfo     bool   `json:"save_info"`
	Username     string `json:"username"`
}
