package paymentgateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bookify/order-service/config"
	"github.com/bookify/order-service/pkg/httpclient"
	"github.com/bookify/order-service/pkg/utils"
	"github.com/sony/gobreaker/v2"
)

// Gateway parameter and field names must match the provider bit-exactly,
// otherwise signature verification fails on both sides.
const (
	ParamVersion           = "vnp_Version"
	ParamCommand           = "vnp_Command"
	ParamTmnCode           = "vnp_TmnCode"
	ParamLocale            = "vnp_Locale"
	ParamCurrCode          = "vnp_CurrCode"
	ParamTxnRef            = "vnp_TxnRef"
	ParamOrderInfo         = "vnp_OrderInfo"
	ParamOrderType         = "vnp_OrderType"
	ParamAmount            = "vnp_Amount"
	ParamReturnURL         = "vnp_ReturnUrl"
	ParamIPAddr            = "vnp_IpAddr"
	ParamCreateDate        = "vnp_CreateDate"
	ParamBankCode          = "vnp_BankCode"
	ParamCardType          = "vnp_CardType"
	ParamPayDate           = "vnp_PayDate"
	ParamResponseCode      = "vnp_ResponseCode"
	ParamTransactionNo     = "vnp_TransactionNo"
	ParamTransactionStatus = "vnp_TransactionStatus"
	ParamSecureHash        = "vnp_SecureHash"
	ParamSecureHashType    = "vnp_SecureHashType"
)

// AmountScale converts VND to the gateway's minor units.
const AmountScale = 100

// ResponseCodeApproved is the provider code for an approved transaction. A
// callback is successful only when both the response code and the transaction
// status carry it.
const ResponseCodeApproved = "00"

var responseCodeMessages = map[string]string{
	"00": "Transaction approved",
	"07": "Amount deducted, transaction flagged as suspicious",
	"09": "Card or account is not registered for online banking",
	"10": "Card or account information verification failed",
	"11": "OTP was not entered",
	"12": "Card or account is locked",
	"13": "Wrong OTP entered too many times",
	"24": "Transaction canceled by the customer",
	"51": "Insufficient account balance",
	"65": "Transaction limit exceeded",
	"75": "The issuing bank is under maintenance",
	"99": "Unknown error",
}

// ResponseCodeMessage maps a provider response code to a human-readable
// description, falling back to the given default.
func ResponseCodeMessage(code, fallback string) string {
	if msg, ok := responseCodeMessages[code]; ok {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return responseCodeMessages["99"]
}

// hashData canonicalizes params for signing: drop the signature fields,
// percent-encode every key and value with spaces as '+', sort by encoded key
// and join as key=value&... exactly as the provider does.
func hashData(params map[string]string) string {
	encoded := make(map[string]string, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		ek := url.QueryEscape(k)
		encoded[ek] = url.QueryEscape(v)
		keys = append(keys, ek)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+encoded[k])
	}

	return strings.Join(pairs, "&")
}

// SignParams computes the HMAC-SHA512 signature over the canonicalized
// parameter set, rendered as lowercase hex.
func SignParams(params map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(hashData(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the signature and compares it byte-for-byte with
// the one carried in the params. A missing signature field is a verification
// failure, never an error.
func VerifySignature(params map[string]string, secret string) bool {
	received, ok := params[ParamSecureHash]
	if !ok || received == "" {
		return false
	}

	expected := SignParams(params, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(received)))
}

// Client talks to the VNPay gateway: builds signed redirect URLs and issues
// refund requests against the merchant API.
type Client struct {
	conf config.VNPayConfig
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func CreateVNPayClient(conf *config.Config, cb *gobreaker.CircuitBreaker[[]byte]) *Client {
	return &Client{
		conf: conf.VNPayConfig,
		cb:   cb,
	}
}

// PaymentURLRequest carries everything needed to build one signed redirect.
type PaymentURLRequest struct {
	TxnRef    string
	OrderInfo string
	Amount    float64
	IPAddr    string
	BankCode  string
	Locale    string
	CreatedAt time.Time
}

// BuildPaymentURL produces the fully-formed redirect URL for the gateway's
// hosted payment page. The amount is expressed in minor units.
func (c *Client) BuildPaymentURL(req PaymentURLRequest) string {
	locale := req.Locale
	if locale == "" {
		locale = "vn"
	}

	params := map[string]string{
		ParamVersion:    "2.1.0",
		ParamCommand:    "pay",
		ParamTmnCode:    c.conf.TmnCode,
		ParamLocale:     locale,
		ParamCurrCode:   "VND",
		ParamTxnRef:     req.TxnRef,
		ParamOrderInfo:  req.OrderInfo,
		ParamOrderType:  "other",
		ParamAmount:     fmt.Sprintf("%d", int64(math.Round(req.Amount*AmountScale))),
		ParamReturnURL:  c.conf.ReturnURL,
		ParamIPAddr:     req.IPAddr,
		ParamCreateDate: utils.FormatVNPayDateTime(req.CreatedAt),
	}

	if bankCode := strings.TrimSpace(req.BankCode); bankCode != "" {
		params[ParamBankCode] = bankCode
	}

	query := hashData(params)
	signature := SignParams(params, c.conf.HashSecret)

	return fmt.Sprintf("%s?%s&%s=%s", c.conf.PayURL, query, ParamSecureHash, signature)
}

type RefundRequest struct {
	TxnRef          string  `json:"vnp_TxnRef"`
	Amount          int64   `json:"vnp_Amount"`
	TransactionDate *string `json:"vnp_TransactionDate"`
	TmnCode         string  `json:"vnp_TmnCode"`
}

type refundResponse struct {
	ResponseCode string `json:"vnp_ResponseCode"`
	Message      string `json:"vnp_Message"`
}

// Refund asks the merchant API to reverse a settled transaction. A non-approved
// response code is returned as an error so the caller can abort its transition.
func (c *Client) Refund(ctx context.Context, txnRef string, amount float64, payDate *time.Time) error {
	payload := RefundRequest{
		TxnRef:  txnRef,
		Amount:  int64(math.Round(amount * AmountScale)),
		TmnCode: c.conf.TmnCode,
	}
	if payDate != nil {
		formatted := utils.FormatVNPayDateTime(*payDate)
		payload.TransactionDate = &formatted
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling refund request: %v", err)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		statusCode, respBody, err := httpclient.SendRequest(ctx, httpclient.HttpRequest{
			URL:    fmt.Sprintf("%s/refund", c.conf.APIURL),
			Method: "POST",
			Body:   jsonBody,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		})
		if err != nil {
			return nil, err
		}
		if statusCode != http.StatusOK {
			return nil, fmt.Errorf("refund endpoint returned non-OK status: %d", statusCode)
		}
		return respBody, nil
	})
	if err != nil {
		return err
	}

	var resp refundResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("error unmarshalling refund response: %v", err)
	}

	if resp.ResponseCode != ResponseCodeApproved {
		return fmt.Errorf("gateway rejected refund with code %s: %s", resp.ResponseCode, resp.Message)
	}

	return nil
}
