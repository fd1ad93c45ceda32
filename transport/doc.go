// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport provides the concrete peer links carrying boundary
// frames into the untrusted domain: an in-process pipe for tests and
// embedders, and stream links over unix sockets or vsock for separate
// processes and VMs.
package transport
