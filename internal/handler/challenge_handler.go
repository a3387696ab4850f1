package handler

import (
	"net/http"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// HandleGetChallenge issues a Proof-of-Work nonce for signup.
func HandleGetChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"enabled":    deps.Pow.Enabled(),
			"difficulty": deps.Pow.Difficulty(),
		}

		if deps.Pow.Enabled() {
			data["nonce"] = deps.Pow.GenerateNonce()
		}

		resp.RespondSuccess(w, r, data)
	}
}

type ChallengeInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandleVerifyChallenge trades a solved nonce for a single use Proof Token.
func HandleVerifyChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ChallengeInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Nonce == "" || input.Counter == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		token, err := deps.Pow.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"powToken": token})
	}
}
