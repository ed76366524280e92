// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package joinflow decides when a resolved group code is sent to the backend.

An Orchestrator moves through

	Idle -> Resolving -> AwaitingAuth -> Joining -> Joined | Failed

Without a token, AttemptJoin stores the code in the session's
pendingGroupCode slot and stops in AwaitingAuth without any network call.
A newer code overwrites the slot. After sign-in, ResumeIfPending takes the
slot (read and delete in one step) and joins. "Already a member" counts as
Joined. Any other failure leaves the slot in place.

Only one join runs per session. A second attempt while one is in flight
returns apperr.ErrJoinInProgress.
*/
package joinflow
