package dto

import "encoding/json"

// AlchemyWebhook mirrors the Alchemy address-activity webhook payload.
// https://docs.alchemy.com/reference/address-activity-webhook
type AlchemyWebhook struct {
	ID    string       `json:"webhookId"`
	Type  string       `json:"type"`
	Event AlchemyEvent `json:"event"`
}

// AlchemyEvent carries the activity batch of a webhook delivery.
type AlchemyEvent struct {
	Network  string            `json:"network"`
	Activity []AlchemyActivity `json:"activity"`
}

// AlchemyActivity is a single chain movement. Value is kept as json.Number
// so amounts never pass through a float.
type AlchemyActivity struct {
	FromAddress string      `json:"fromAddress"`
	ToAddress   string      `json:"toAddress"`
	Hash        string      `json:"hash"`
	Value       json.Number `json:"value"`
	Asset       string      `json:"asset"`
	Category    string      `json:"category"`
}

// WebhookAck is the response body for webhook deliveries.
type WebhookAck struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	Reason    string `json:"reason,omitempty"`
}
