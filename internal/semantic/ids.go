package semantic

// ScopeID identifies a scope in the model arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// BindingID identifies a binding inside the model arena.
type BindingID uint32

const (
	// NoBindingID marks the absence of a binding reference.
	NoBindingID BindingID = 0
)

// IsValid reports whether the binding ID refers to an allocated binding.
func (id BindingID) IsValid() bool { return id != NoBindingID }

// ReferenceID identifies a recorded name read.
type ReferenceID uint32

const NoReferenceID ReferenceID = 0

func (id ReferenceID) IsValid() bool { return id != NoReferenceID }

// BranchID identifies a conditional branch (if/elif/else, try/except arms).
// The zero branch is the unconditional top level.
type BranchID uint32

const NoBranchID BranchID = 0

func (id BranchID) IsValid() bool { return id != NoBranchID }
