package subscription

import (
	"fmt"
	"regexp"
	"time"

	"github.com/beevik/etree"
	"github.com/juju/errors"
)

const (
	nsEnvelope     = "http://www.w3.org/2003/05/soap-envelope"
	nsAddressing   = "http://www.w3.org/2005/08/addressing"
	nsNotification = "http://docs.oasis-open.org/wsn/b-2"
	nsSecurity     = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	nsUtility      = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
	nsPasswordType = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordDigest"
	nsNonceType    = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-soap-message-security-1.0#Base64Binary"

	actionSubscribe   = "http://docs.oasis-open.org/wsn/bw-2/NotificationProducer/SubscribeRequest"
	actionRenew       = "http://docs.oasis-open.org/wsn/bw-2/SubscriptionManager/RenewRequest"
	actionUnsubscribe = "http://docs.oasis-open.org/wsn/bw-2/SubscriptionManager/UnsubscribeRequest"

	responseTimeFormat = "2006-01-02T15:04:05Z"
)

// newEnvelope returns a soap envelope with the security header filled in and
// the empty body element for the caller to populate. action and to are
// optional WS-Addressing headers; Subscribe does not carry them.
func newEnvelope(token *securityToken, action, to string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("s:Envelope")
	env.CreateAttr("xmlns:s", nsEnvelope)
	env.CreateAttr("xmlns:add", nsAddressing)
	env.CreateAttr("xmlns:b", nsNotification)
	env.CreateAttr("xmlns:wsse", nsSecurity)
	env.CreateAttr("xmlns:wsu", nsUtility)

	header := env.CreateElement("s:Header")

	if action != "" {
		a := header.CreateElement("add:Action")
		a.SetText(action)
	}
	if to != "" {
		t := header.CreateElement("add:To")
		t.SetText(to)
	}

	security := header.CreateElement("wsse:Security")
	security.CreateAttr("s:mustUnderstand", "1")

	userToken := security.CreateElement("wsse:UsernameToken")
	userToken.CreateAttr("wsu:Id", "SecurityToken-"+token.TokenID)

	username := userToken.CreateElement("wsse:Username")
	username.SetText(token.Username)

	password := userToken.CreateElement("wsse:Password")
	password.CreateAttr("Type", nsPasswordType)
	password.SetText(token.PasswordDigest)

	nonce := userToken.CreateElement("wsse:Nonce")
	nonce.CreateAttr("EncodingType", nsNonceType)
	nonce.SetText(token.Nonce)

	created := userToken.CreateElement("wsu:Created")
	created.SetText(token.Created)

	body := env.CreateElement("s:Body")
	return doc, body
}

func subscribeEnvelope(token *securityToken, callbackURL string, lease time.Duration) (string, error) {
	doc, body := newEnvelope(token, "", "")

	subscribe := body.CreateElement("b:Subscribe")
	consumer := subscribe.CreateElement("b:ConsumerReference")
	address := consumer.CreateElement("add:Address")
	address.SetText(callbackURL)
	term := subscribe.CreateElement("b:InitialTerminationTime")
	term.SetText(leaseString(lease))

	return doc.WriteToString()
}

func renewEnvelope(token *securityToken, managerURL string, lease time.Duration) (string, error) {
	doc, body := newEnvelope(token, actionRenew, managerURL)

	renew := body.CreateElement("b:Renew")
	term := renew.CreateElement("b:TerminationTime")
	term.SetText(leaseString(lease))

	return doc.WriteToString()
}

func unsubscribeEnvelope(token *securityToken, managerURL string) (string, error) {
	doc, body := newEnvelope(token, actionUnsubscribe, managerURL)
	body.CreateElement("b:Unsubscribe")
	return doc.WriteToString()
}

func leaseString(lease time.Duration) string {
	return fmt.Sprintf("PT%dM", int(lease.Minutes()))
}

// subscribeResult holds the fields a Subscribe response must carry.
type subscribeResult struct {
	Address         string
	CurrentTime     time.Time
	TerminationTime time.Time
}

// extractField pulls the text content of the first element with the given
// local name, regardless of namespace prefix. Reolink firmware is not
// consistent about prefixes, so a structural parse is more fragile than it
// sounds; matching on the element name works across firmware versions.
func extractField(response, element string) (string, bool) {
	re := regexp.MustCompile(element + `>(.+?)<`)
	match := re.FindStringSubmatch(response)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func extractTimeField(response, element string) (time.Time, error) {
	raw, ok := extractField(response, element)
	if !ok {
		return time.Time{}, errors.NotFoundf("element %s in response", element)
	}
	t, err := time.Parse(responseTimeFormat, raw)
	if err != nil {
		return time.Time{}, errors.NotValidf("%s value %q", element, raw)
	}
	return t, nil
}

func parseSubscribeResponse(response string) (*subscribeResult, error) {
	address, ok := extractField(response, "Address")
	if !ok {
		return nil, errors.NotFoundf("subscription manager address in response")
	}

	currentTime, err := extractTimeField(response, "CurrentTime")
	if err != nil {
		return nil, errors.Trace(err)
	}

	terminationTime, err := extractTimeField(response, "TerminationTime")
	if err != nil {
		return nil, errors.Trace(err)
	}

	return &subscribeResult{
		Address:         address,
		CurrentTime:     currentTime,
		TerminationTime: terminationTime,
	}, nil
}

func parseRenewResponse(response string) (time.Time, error) {
	currentTime, err := extractTimeField(response, "CurrentTime")
	if err != nil {
		return time.Time{}, errors.Trace(err)
	}
	return currentTime, nil
}
