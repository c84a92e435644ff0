package nwk

// NWK layer constants (Section 3.5.1).
const (
	// ProtocolVersion is nwkcProtocolVersion, written into outbound frame control.
	ProtocolVersion uint8 = 0x02

	// MinHeaderOverhead is nwkcMinHeaderOverhead in octets: the header
	// without any optional field.
	MinHeaderOverhead = 0x08
)
