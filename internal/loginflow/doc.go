// Package loginflow coordinates the sign-in attempts a login surface can start.
//
// A Controller bundles three roles:
//   - Coordinator: the single gate. At most one Attempt is in flight at a time and
//     every outcome ends up in one FlowState (loading + last error).
//   - CredentialSubmitter: email/password sign-in, one backend call per admitted submission.
//   - ProviderLauncher: one per external provider (google, github, ...). It asks the
//     backend for an authorization URL and hands it to the caller. The controller's
//     job ends at redirect dispatch; completion happens after the browser comes back,
//     in the session layer, and a fresh controller is used from then on.
//
// Initiators never return errors to their caller. Backend failures are converted into
// Coordinator.ReportFailure calls and the presentation layer reads them back from
// Snapshot. A start that loses the race is a silent no-op (OutcomeRejected).
package loginflow
