package committee

// State is a position in the review loop
type State string

// Loop states. A round moves through ADVOCATING, CRITIQUING and WRITING,
// then either CONTINUE into the next round or TERMINATED.
const (
	StateInit       State = "INIT"
	StateAdvocating State = "ADVOCATING"
	StateCritiquing State = "CRITIQUING"
	StateWriting    State = "WRITING"
	StateContinue   State = "CONTINUE"
	StateTerminated State = "TERMINATED"
)

// Role names a committee member
type Role string

// Committee roles
const (
	RoleAdvocate Role = "advocate"
	RoleCritic   Role = "critic"
	RoleWriter   Role = "writer"
)
