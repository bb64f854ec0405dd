package i18n

// ptBR holds Brazilian Portuguese translations. Missing codes fall back to en-US.
var ptBR = map[Code]string{
	"UNKNOWN":                       "Algo deu errado. Tente novamente.",
	"ROOM_CAPACITY_EXCEEDED":        "Número máximo de salas ({{.Ceiling}}) atingido para este período.",
	"ROOM_NOT_FOUND":                "Sala não encontrada.",
	"ROOM_NOT_LIVE":                 "A sala não está ativa.",
	"ROOM_INVALID_WINDOW":           "O período agendado é inválido.",
	"ROOM_SLUG_TAKEN":               "Já existe uma sala com este identificador.",
	"ROOM_PERMISSION_DENIED":        "Você não tem permissão para acessar esta sala.",
	"GRANT_INVALID":                 "A solicitação de permissão é inválida.",
	"ROOM_RECORDING_TARGET_MISSING": "Um destino de compartilhamento deve ser configurado antes de gravar.",
	"SIGNING_CONFIG_MISSING":        "As credenciais de assinatura do serviço não estão configuradas.",
}
