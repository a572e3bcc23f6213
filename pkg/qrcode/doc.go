// Package qrcode renders otpauth:// provisioning URIs (or any string) as
// scannable QR code images for 2FA enrollment screens.
//
// Images are produced as PNG bytes, with an optional base64 data-URI form
// for direct embedding in an <img> tag.
package qrcode
