package safe

import (
	"strings"
	"testing"
)

func TestAppURL(t *testing.T) {
	got := AppURL(1, testSafeAddress)
	if got != "https://app.safe.global/home?safe=eth:"+testSafeAddress {
		t.Fatalf("unexpected app url: %s", got)
	}

	if !strings.Contains(AppURL(11155111, testSafeAddress), "safe=sep:") {
		t.Fatal("sepolia must use the sep prefix")
	}
	if !strings.Contains(AppURL(424242, testSafeAddress), "safe=eth:") {
		t.Fatal("unknown chains must fall back to the eth prefix")
	}
}

func TestSigningURL(t *testing.T) {
	got := SigningURL(1, testSafeAddress, "0xhash")
	if !strings.HasPrefix(got, "https://app.safe.global/transactions/tx?safe=eth:") {
		t.Fatalf("unexpected signing url: %s", got)
	}
	if !strings.HasSuffix(got, "id=multisig_"+testSafeAddress+"_0xhash") {
		t.Fatalf("signing url must carry the multisig id: %s", got)
	}
}
