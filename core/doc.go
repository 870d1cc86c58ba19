// Package core holds the payment-session domain: attempt governance,
// completion notification assembly and the Service that orchestrates them
// over pluggable stores, channels and job queues. Adapters depend on core;
// core does not depend on any adapter.
package core
