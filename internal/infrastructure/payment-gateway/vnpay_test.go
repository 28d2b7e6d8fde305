package paymentgateway

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bookify/order-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "TESTHASHSECRET123"

func testParams() map[string]string {
	return map[string]string{
		ParamTmnCode:           "BOOKIFY1",
		ParamTxnRef:            "0190f7a2-1111-7abc-9def-000000000001",
		ParamAmount:            "23000000",
		ParamResponseCode:      "00",
		ParamTransactionStatus: "00",
		ParamOrderInfo:         "Thanh toan don hang OD2608281030154821",
		ParamPayDate:           "20260828103015",
	}
}

func TestSignVerifyRoundtrip(t *testing.T) {
	params := testParams()
	params[ParamSecureHash] = SignParams(params, testSecret)

	assert.True(t, VerifySignature(params, testSecret))
}

func TestVerifySignatureRejectsTamperedParam(t *testing.T) {
	params := testParams()
	params[ParamSecureHash] = SignParams(params, testSecret)

	params[ParamAmount] = "23000001"

	assert.False(t, VerifySignature(params, testSecret))
}

func TestVerifySignatureRejectsMissingHash(t *testing.T) {
	assert.False(t, VerifySignature(testParams(), testSecret))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	params := testParams()
	params[ParamSecureHash] = SignParams(params, testSecret)

	assert.False(t, VerifySignature(params, "ANOTHERSECRET"))
}

func TestHashDataExcludesSignatureFields(t *testing.T) {
	params := testParams()
	base := hashData(params)

	params[ParamSecureHash] = "deadbeef"
	params[ParamSecureHashType] = "HMACSHA512"

	assert.Equal(t, base, hashData(params))
}

func TestHashDataSortsAndEncodes(t *testing.T) {
	data := hashData(map[string]string{
		ParamOrderInfo: "Thanh toan don hang",
		ParamAmount:    "100",
	})

	// Sorted by key, spaces carried as '+'.
	assert.Equal(t, "vnp_Amount=100&vnp_OrderInfo=Thanh+toan+don+hang", data)
}

func TestBuildPaymentURL(t *testing.T) {
	conf := &config.Config{
		VNPayConfig: config.VNPayConfig{
			TmnCode:    "BOOKIFY1",
			HashSecret: testSecret,
			PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "https://shop.example.com/api/v1/orders/payments/vnpay/return",
		},
	}
	client := CreateVNPayClient(conf, nil)

	createdAt := time.Date(2026, 8, 28, 10, 30, 15, 0, time.FixedZone("ICT", 7*3600))
	paymentURL := client.BuildPaymentURL(PaymentURLRequest{
		TxnRef:    "0190f7a2-1111-7abc-9def-000000000001",
		OrderInfo: "Thanh toan don hang OD2608281030154821",
		Amount:    230000,
		IPAddr:    "127.0.0.1",
		CreatedAt: createdAt,
	})

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paymentURL, conf.VNPayConfig.PayURL+"?"))

	query := parsed.Query()
	assert.Equal(t, "2.1.0", query.Get(ParamVersion))
	assert.Equal(t, "pay", query.Get(ParamCommand))
	assert.Equal(t, "BOOKIFY1", query.Get(ParamTmnCode))
	assert.Equal(t, "VND", query.Get(ParamCurrCode))
	assert.Equal(t, "vn", query.Get(ParamLocale))
	assert.Equal(t, "23000000", query.Get(ParamAmount))
	assert.Equal(t, "20260828103015", query.Get(ParamCreateDate))
	assert.Empty(t, query.Get(ParamBankCode))
	assert.NotEmpty(t, query.Get(ParamSecureHash))

	// The URL carries a signature over its own parameter set.
	params := map[string]string{}
	for key := range query {
		params[key] = query.Get(key)
	}
	assert.True(t, VerifySignature(params, testSecret))
}

func TestBuildPaymentURLWithBankCode(t *testing.T) {
	conf := &config.Config{
		VNPayConfig: config.VNPayConfig{
			TmnCode:    "BOOKIFY1",
			HashSecret: testSecret,
			PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "https://shop.example.com/return",
		},
	}
	client := CreateVNPayClient(conf, nil)

	paymentURL := client.BuildPaymentURL(PaymentURLRequest{
		TxnRef:    "ref-1",
		OrderInfo: "order",
		Amount:    100000,
		IPAddr:    "10.0.0.1",
		BankCode:  "NCB",
		Locale:    "en",
		CreatedAt: time.Now(),
	})

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)
	assert.Equal(t, "NCB", parsed.Query().Get(ParamBankCode))
	assert.Equal(t, "en", parsed.Query().Get(ParamLocale))
}

func TestResponseCodeMessage(t *testing.T) {
	assert.Equal(t, "Transaction approved", ResponseCodeMessage("00", ""))
	assert.Equal(t, "Insufficient account balance", ResponseCodeMessage("51", ""))
	assert.Equal(t, "fallback", ResponseCodeMessage("42", "fallback"))
	assert.Equal(t, "Unknown error", ResponseCodeMessage("42", ""))
}
