package errs

// Guidance is human-readable remediation advice keyed by error code.
type Guidance struct {
	Code        string
	Summary     string
	Instruction string
}

// guidanceTable is the finite code-to-guidance mapping. Unknown codes
// fall back to genericGuidance rather than failing the lookup.
var guidanceTable = map[string]Guidance{
	CodeInitFailed: {
		Code:        CodeInitFailed,
		Summary:     "SDK initialization rejected",
		Instruction: "Check that the configured apiKey is present, at least 10 characters, and matches the key issued for this property.",
	},
	CodeNotInitialized: {
		Code:        CodeNotInitialized,
		Summary:     "SDK used before initialization",
		Instruction: "Call Initialize and wait for it to return before requesting ads or tracking events.",
	},
	CodeDestroyed: {
		Code:        CodeDestroyed,
		Summary:     "SDK used after Destroy",
		Instruction: "A destroyed SDK instance cannot be reused. Construct a new instance and initialize it.",
	},
	CodeRetryExhausted: {
		Code:        CodeRetryExhausted,
		Summary:     "Network operation failed after all retry attempts",
		Instruction: "Verify connectivity to the ad server endpoint and review the retry policy limits.",
	},
	CodeConsentMissing: {
		Code:        CodeConsentMissing,
		Summary:     "Operation attempted without required consent",
		Instruction: "Obtain user consent before initializing ad requests; pass the consent flag in the SDK configuration.",
	},
}

var genericGuidance = Guidance{
	Code:        "unknown",
	Summary:     "Unrecognized error code",
	Instruction: "Consult the troubleshooting documentation for this error's category.",
}

// GuidanceFor returns remediation advice for a code, degrading to a
// generic entry for codes outside the table.
func GuidanceFor(code string) Guidance {
	if g, ok := guidanceTable[code]; ok {
		return g
	}
	g := genericGuidance
	g.Code = code
	return g
}
