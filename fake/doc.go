// Package fake provides scripted stand-ins for the two external
// collaborators of the dispatcher: the untrusted stub peer and the
// host network stack. Both journal every interaction so tests can
// assert boundary ordering, not just final values.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package fake
