package notify

import "fmt"

const signature = "\n\nBest regards,\nPayWave Team"

func PaymentSuccessful(merchantID, to, name string, amount int64, currency, reference string) Message {
	return Message{
		MerchantID: merchantID,
		Recipient:  to,
		Subject:    "Payment Successful",
		Body: fmt.Sprintf(
			"Hello %s,\n\nA payment of %d %s with reference %s was received and credited to your balance.%s",
			name, amount, currency, reference, signature,
		),
	}
}

func PaymentFailed(merchantID, to, name string, amount int64, currency, reference string) Message {
	return Message{
		MerchantID: merchantID,
		Recipient:  to,
		Subject:    "Payment Failed",
		Body: fmt.Sprintf(
			"Hello %s,\n\nThe payment of %d %s with reference %s could not be completed.%s",
			name, amount, currency, reference, signature,
		),
	}
}

func PayoutFailed(merchantID, to, name string, amount int64, currency, reference string) Message {
	return Message{
		MerchantID: merchantID,
		Recipient:  to,
		Subject:    "Payout Failed",
		Body: fmt.Sprintf(
			"Hello %s,\n\nWe received the payment of %d %s with reference %s but the disbursement to your bank account failed. Our team will follow up.%s",
			name, amount, currency, reference, signature,
		),
	}
}

func WithdrawalSuccessful(merchantID, to, name string, amount int64, currency, reference string) Message {
	return Message{
		MerchantID: merchantID,
		Recipient:  to,
		Subject:    "Withdrawal Successful",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour withdrawal of %d %s with reference %s was successful.%s",
			name, amount, currency, reference, signature,
		),
	}
}

func WithdrawalFailed(merchantID, to, name string, amount int64, currency, reference string) Message {
	return Message{
		MerchantID: merchantID,
		Recipient:  to,
		Subject:    "Withdrawal Failed",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour withdrawal of %d %s with reference %s failed. No funds were deducted.%s",
			name, amount, currency, reference, signature,
		),
	}
}
