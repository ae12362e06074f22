package domain

// DNSLookup is the normalized result of one DNS-over-HTTPS provider query.
// Each provider adapter maps its own JSON shape onto this type; verification
// logic consumes only this.
type DNSLookup struct {
	Provider string
	// Status is the DNS RCODE reported by the provider. 0 is NOERROR,
	// 3 is NXDOMAIN.
	Status  int
	Records []string
	// Err is set on transport level failures only; "no matching record" is
	// not an error.
	Err error
}

// DNS RCODEs this service cares about.
const (
	DNSStatusNoError  = 0
	DNSStatusNXDomain = 3
)
