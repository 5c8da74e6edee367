package neat

import "errors"

// Sentinel errors returned by the package. Callers match them with errors.Is.
var (
	// ErrNilGenome is returned when a genome argument is nil.
	ErrNilGenome = errors.New("genome is nil")
	// ErrNilRandomSource is returned by constructors given no random source.
	ErrNilRandomSource = errors.New("random source is nil")
	// ErrNilRegistry is returned by structural mutations given no registry.
	ErrNilRegistry = errors.New("innovation registry is nil")
	// ErrInvalidPopulationSize rejects a population size below one.
	ErrInvalidPopulationSize = errors.New("population size must be positive")
	// ErrPopulationOverflow means more live genomes than the population size.
	ErrPopulationOverflow = errors.New("population exceeds its fixed size")
	// ErrDuplicateInnovation means a gene with that innovation id exists.
	ErrDuplicateInnovation = errors.New("duplicate innovation id")
	// ErrDuplicateNode means a node with that id exists.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrUnknownNode means a referenced node id is not in the genome.
	ErrUnknownNode = errors.New("unknown node")
)
