// Package tasks implements the account, provisioning and contribution workflows.
//
// # Contribution
//
// [ContributionWorkflow.Contribute] moves through these phases, reporting each as a [ProgressUpdate]:
//
//  1. [ValidatingLink] : resolve the sharing link and its active playlist
//  2. [CheckingCooldown] : reject the contributor while their last contribution is unexpired
//  3. [FetchingContributorTracks] : read the contributor's top tracks with their own token
//  4. [RefreshingOwnerCredential] : make sure the owner's token outlives the margin
//  5. [MutatingExternalPlaylist] : add the tracks with the owner's token
//  6. [RecordingContribution] : write the ledger row
//
// Steps 5 and 6 are not atomic. A failed ledger write after a successful add is logged
// at error level with reconcile=true.
//
// # Progress Reporting
//
// Updates use select with default so reporting never blocks the workflow.
//
// # Credentials
//
// [CredentialManager] refreshes owner tokens under a per-account lock and stores them with
// compare-and-swap on the previous refresh token.
//
// # Provisioning
//
// [Provisioner.Dashboard] gets or creates the owner's playlist and sharing link.
// [AccountService.SignIn] creates the user and account link on first sign-in.
package tasks
