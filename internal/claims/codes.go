package claims

// Standard claim adjustment reason codes recognized by the denial form.
// CO codes are contractual obligations, PR codes are patient responsibility.
var denialCodes = map[string]string{
	"CO-16": "Claim/service lacks information or has submission/billing error(s)",
	"CO-18": "Duplicate claim/service",
	"CO-29": "The time limit for filing has expired",
	"CO-97": "The benefit for this service is included in the payment/allowance for another service/procedure",
	"PR-1":  "Patient ineligible for benefits",
	"PR-2":  "Service not covered by this payer/insurance",
	"PR-3":  "Patient ineligible for benefits on date of service",
}

// DenialReason resolves a code to its description.
func DenialReason(code string) (string, bool) {
	reason, ok := denialCodes[code]
	return reason, ok
}

// DenialCodes returns a copy of the code table for the JSON endpoint.
func DenialCodes() map[string]string {
	out := make(map[string]string, len(denialCodes))
	for k, v := range denialCodes {
		out[k] = v
	}
	return out
}
