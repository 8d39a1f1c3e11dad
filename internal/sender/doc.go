// Package sender contains the outbound delivery adapters. Each adapter
// implements the relay.Forwarder interface against one provider API:
// SendGrid's v3 mail send, AWS SESv2, or Microsoft Graph sendMail. The
// active adapter is selected by configuration at startup; the pipeline
// never knows which one it is talking to.
package sender
