// Package classifier adapts pretrained duplicate-pair models.
//
// A Model receives the ordered feature vector built by package features and
// returns Valid or Invalid. LogisticModel evaluates a JSON weight artifact in
// process; RemoteModel posts the vector to an HTTP prediction endpoint. Load
// builds the configured implementation once at startup and reports any
// failure as a *LoadError, which is fatal to serving.
package classifier
