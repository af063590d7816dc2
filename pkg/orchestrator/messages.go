package orchestrator

// VideoLoadingMessages は動画のポーリング中に順番に表示するメッセージです。
var VideoLoadingMessages = []string{
	"Iniciando a geração do vídeo...",
	"Enviando solicitação para a matriz de vídeo...",
	"Aquecendo os motores de renderização...",
	"Consultando o resultado inicial...",
	"A IA está sonhando com o seu vídeo...",
	"Verificando o status da operação...",
	"Juntando os frames...",
	"Isso pode levar alguns minutos, por favor aguarde...",
	"Ainda consultando o resultado...",
	"Finalizando o fluxo de vídeo...",
	"Quase lá...",
}

const (
	MsgComposing      = "Inserindo produto..."
	MsgSynthesizing   = "Criando imagem..."
	MsgFetchingVideo  = "Buscando dados do vídeo..."
	MsgVariation      = "IA está pensando em uma nova variação..."
	MsgAnalyzingImage = "Diretor Criativo de IA está analisando sua imagem..."

	MsgSaved            = "Criação salva na galeria!"
	MsgSaveFailed       = "Falha ao salvar na galeria. A criação não será permanente."
	MsgSavedSessionOnly = "Criação mantida apenas nesta sessão. O armazenamento local não está disponível."
	MsgVideoPromptDone  = "Prompt de vídeo gerado com IA!"
)

// videoMessage は index 番目のメッセージをリスト長で折り返して返します。
func videoMessage(index int) string {
	return VideoLoadingMessages[index%len(VideoLoadingMessages)]
}
