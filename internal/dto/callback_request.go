package dto

// IPN result codes acknowledged to the gateway's server-to-server channel.
// The notification transport always answers HTTP 200 with one of these.
const (
	CallbackCodeSuccess          = "00"
	CallbackCodeOrderNotFound    = "01"
	CallbackCodeAlreadyConfirmed = "02"
	CallbackCodeAmountInvalid    = "04"
	CallbackCodeChecksumFailed   = "97"
	CallbackCodeInternalError    = "99"
)

// CallbackResult is the transport-neutral outcome of processing one gateway
// callback: the IPN channel answers with Code/Message, the interactive channel
// follows Redirect.
type CallbackResult struct {
	Code     string `json:"RspCode"`
	Message  string `json:"Message"`
	Redirect string `json:"-"`
}

type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}
