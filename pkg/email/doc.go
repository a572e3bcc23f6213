// Package email provides a provider-agnostic interface for sending
// transactional emails, with a Postmark client for production and a
// DevSender that writes messages to disk for local development.
//
// The OTPNotifier renders and dispatches verification-code emails; it plugs
// into the mailotp service as its NotificationSender.
package email
