// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the JSON types exchanged with the Hesap Paylaş
backend and the types the join gateway answers with.

# Backend Types

Bodies sent to and received from the backend API:

  - SignupRequest, LoginRequest, GoogleLoginRequest -> AuthResponse
  - CreateGroupRequest -> CreateGroupResponse
  - JoinGroupRequest -> JoinGroupResponse
  - Group, GroupSummary, Member, Order

Backend field names are kept as-is (firstName on users, first_name on
members), since both conventions appear on the wire.

# Gateway Types

  - JoinResponse: join state plus the resolved code
  - CodeInfo: classification of a raw code
  - GatewayGroup, ShareInfo: group detail with share link and QR payload
  - SessionResponse: result of a login, with any resumed join
  - ErrorResponse: error, code, message

# Join States

	StateIdle, StateResolving, StateAwaitingAuth,
	StateJoining, StateJoined, StateFailed
*/
package models
