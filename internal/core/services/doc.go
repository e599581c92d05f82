// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): composing dataset rows into
// documents, publishing index generations and answering queries.
package services
