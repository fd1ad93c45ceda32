// Package netstack
// Author: momentics <momentics@gmail.com>
//
// Host network stack executed on behalf of the stub peer. The Linux
// implementation talks to the kernel through raw socket syscalls so
// descriptor numbers and errno values stay faithful to what the peer
// expects; other platforms get a stub that refuses every operation.
package netstack
