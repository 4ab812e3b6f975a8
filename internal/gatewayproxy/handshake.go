package gatewayproxy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// signNonce computes the HMAC-SHA256 of nonce keyed by the agent's gateway
// token, hex-encoded, matching the on-VPS backend's handshake signature.
func signNonce(nonce, token string) string {
	mac := hmac.New(sha256.New, []byte(token))
	mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil))
}

// rewriteConnectFrame overwrites params.auth.token with the real gateway
// token and, if params.nonce is present, recomputes params.signedNonce.
// The browser never sees gatewayToken; this is the only place it is
// substituted into the protocol.
func rewriteConnectFrame(frame []byte, gatewayToken string) ([]byte, error) {
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, err
	}

	rawParams, ok := msg["params"]
	if !ok {
		return frame, nil
	}

	var params map[string]json.RawMessage
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return frame, nil
	}

	var auth map[string]json.RawMessage
	if rawAuth, ok := params["auth"]; ok {
		if err := json.Unmarshal(rawAuth, &auth); err != nil {
			auth = map[string]json.RawMessage{}
		}
	} else {
		auth = map[string]json.RawMessage{}
	}
	tokenJSON, err := json.Marshal(gatewayToken)
	if err != nil {
		return nil, err
	}
	auth["token"] = tokenJSON
	authJSON, err := json.Marshal(auth)
	if err != nil {
		return nil, err
	}
	params["auth"] = authJSON

	var nonce string
	if rawNonce, ok := params["nonce"]; ok {
		if err := json.Unmarshal(rawNonce, &nonce); err == nil && nonce != "" {
			signed := signNonce(nonce, gatewayToken)
			signedJSON, err := json.Marshal(signed)
			if err != nil {
				return nil, err
			}
			params["signedNonce"] = signedJSON
		}
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	msg["params"] = paramsJSON

	return json.Marshal(msg)
}
