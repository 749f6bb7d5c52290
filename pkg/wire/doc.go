// Package wire implements the ASCII control protocol spoken by the
// receivers: `< VERB [channel] KEY [value] >` outbound, and three inbound
// frame shapes (solicited replies, unsolicited reports, and SAMPLE metering
// frames).
//
// The protocol has no message IDs and no framing beyond line endings, and
// devices may concatenate several frames into one TCP segment. Parsers here
// therefore never fail hard: a line that does not match a known shape is
// reported as "no match" and the caller decides whether that is worth
// logging.
package wire
