// Package setup installs an embeddable runtime distribution into a local
// directory and layers packages on top of it.
//
// An Installer is built from one immutable Config. SetupRuntime walks the
// state machine Checking, Fetching, Extracting, Patching and ends in Ready or
// Failed. Stage failures never abort the caller: they are logged to the sink
// and returned in a Report. The filesystem remains the only installation
// record, so the predicates (IsRuntimeInstalled, IsPackageManagerInstalled,
// IsModuleInstalled) always reflect the true outcome.
package setup
