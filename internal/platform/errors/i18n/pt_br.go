package i18n

var ptBRMessages = map[Code]string{
	CodeUnknown:                     "Algo deu errado. Tente novamente.",
	CodeAdminCannotBeRestricted:     "Administradores não podem receber uma situação restrita. Revogue o acesso de administrador primeiro.",
	CodeCannotLeaveRestricted:       "Somente um administrador pode alterar a situação {{.Status}}.",
	CodeCannotEnterRestricted:       "A situação {{.Status}} só pode ser atribuída por um administrador.",
	CodeLastAdminProtected:          "Deve existir pelo menos um administrador.",
	CodeRestrictedUserCannotBeAdmin: "Membros com situação {{.Status}} não podem se tornar administradores.",
	CodeStatusUnrecognized:          "Situação de associação desconhecida: {{.Status}}.",
	CodeAdminCountInvalid:           "A contagem de administradores é inválida.",
	CodeIDInvalid:                   "O identificador {{.Field}} é inválido.",
	CodeUserNameEmpty:               "Nome e sobrenome são obrigatórios.",
	CodeUserEmailInvalid:            "O endereço de e-mail é inválido.",
	CodeGroupNameEmpty:              "O nome do grupo de acesso é obrigatório.",
	CodeSectionNameEmpty:            "O nome da seção é obrigatório.",
	CodeSectionTypeInvalid:          "Tipo de seção desconhecido: {{.Type}}.",
	CodeRequestInvalid:              "Não foi possível ler a requisição.",
	CodeUserNotPending:              "Este membro não tem solicitação de associação pendente.",
	CodeUserNotAdmin:                "Este membro não é administrador.",
	CodeUserAlreadyAdmin:            "Este membro já é administrador.",
	CodePermissionDenied:            "Você não tem permissão para realizar esta ação.",
	CodeUnauthenticated:             "Entre para continuar.",
	CodeNotFound:                    "O registro solicitado não foi encontrado.",
	CodeAlreadyExists:               "O registro já existe.",
	CodeSectionNotViewable:          "Você não pode ver esta seção.",
	CodeSectionNotSubscribable:      "Você não pode se inscrever nesta seção.",
}
