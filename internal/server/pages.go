package server

// 各ページの固定マークアップ
// ビューアの状態はサーバー側のエンジンが所有し、ページは表示と操作のみを担う

// landingPage はランディングページ
const landingPage = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Iromegane - 視覚アクセシビリティカメラ</title>
    <link rel="stylesheet" href="/static/style.css">
</head>
<body>
    <main class="landing">
        <h1>Iromegane</h1>
        <p>カメラ映像に色覚フィルタ・ズーム・レターボックスマスクを適用するビューアです。</p>
        <nav>
            <a href="/introduction">使い方</a>
            <a href="/samples">ビューアを開く</a>
        </nav>
    </main>
</body>
</html>`

// introductionPage は紹介ページ
const introductionPage = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Iromegane - 使い方</title>
    <link rel="stylesheet" href="/static/style.css">
</head>
<body>
    <main class="introduction">
        <h1>使い方</h1>
        <ul>
            <li>ドラッグで映像をパンできます（ズーム中のみ動きます）</li>
            <li>スライダーまたは +/- ボタンでズームを調整します</li>
            <li>フィルタボタンで色覚シミュレーションや高コントラスト配色を適用します</li>
            <li>色相・明度・コントラスト・彩度はプリセットと独立して調整できます</li>
            <li>マスクを有効にすると上下に減光バーが表示されます</li>
        </ul>
        <nav>
            <a href="/">戻る</a>
            <a href="/samples">ビューアを開く</a>
        </nav>
    </main>
</body>
</html>`

// samplesPage はビューアページ
// 色覚プリセット（protanopia / deuteranopia / tritanopia）用のSVGフィルタ定義を含む
const samplesPage = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Iromegane - ビューア</title>
    <link rel="stylesheet" href="/static/style.css">
</head>
<body>
    <svg class="filter-defs" width="0" height="0" aria-hidden="true">
        <defs>
            <filter id="protanopia">
                <feColorMatrix type="matrix" values="0.567 0.433 0     0 0
                                                     0.558 0.442 0     0 0
                                                     0     0.242 0.758 0 0
                                                     0     0     0     1 0"/>
            </filter>
            <filter id="deuteranopia">
                <feColorMatrix type="matrix" values="0.625 0.375 0     0 0
                                                     0.7   0.3   0     0 0
                                                     0     0.3   0.7   0 0
                                                     0     0     0     1 0"/>
            </filter>
            <filter id="tritanopia">
                <feColorMatrix type="matrix" values="0.95  0.05  0     0 0
                                                     0     0.433 0.567 0 0
                                                     0     0.475 0.525 0 0
                                                     0     0     0     1 0"/>
            </filter>
        </defs>
    </svg>

    <main class="viewer">
        <div id="camera-container" class="camera-container">
            <img id="camera" class="camera" src="/api/stream" alt="カメラ映像">
        </div>

        <div class="controls">
            <button id="home" type="button">ホーム</button>
            <button id="reset-zoom" type="button" hidden>ズームをリセット</button>

            <label>ズーム
                <input id="zoom" type="range" min="1" max="5" step="0.1" value="1">
            </label>
            <button id="zoom-out" type="button">-</button>
            <button id="zoom-in" type="button">+</button>

            <div class="filter-buttons">
                <button type="button" data-preset="none">通常視界</button>
                <button type="button" data-preset="protanopia">1型色覚</button>
                <button type="button" data-preset="deuteranopia">2型色覚</button>
                <button type="button" data-preset="tritanopia">3型色覚</button>
                <button type="button" data-preset="grayscale">グレースケール</button>
                <button type="button" data-preset="inverted">反転</button>
                <button type="button" data-preset="inverted-grayscale">反転グレースケール</button>
                <button type="button" data-preset="blue-on-yellow">青地に黄</button>
                <button type="button" data-preset="neon-orange">ネオンオレンジ</button>
                <button type="button" data-preset="neon-green">ネオングリーン</button>
                <button type="button" data-preset="yellow-on-black">黒地に黄</button>
                <button type="button" data-preset="purple-on-black">黒地に紫</button>
            </div>

            <div class="custom-filters">
                <label>色相
                    <input id="hue" type="range" min="-180" max="180" step="1" value="0">
                </label>
                <label>明度
                    <input id="brightness" type="range" min="0" max="200" step="1" value="100">
                </label>
                <label>コントラスト
                    <input id="contrast" type="range" min="0" max="200" step="1" value="100">
                </label>
                <label>彩度
                    <input id="saturation" type="range" min="0" max="200" step="1" value="100">
                </label>
            </div>

            <div class="mask-controls">
                <button id="mask-toggle" type="button">マスク切り替え</button>
                <label>マスクの太さ
                    <input id="mask-size" type="range" min="0" max="50" step="1" value="15">
                </label>
            </div>
        </div>
    </main>
</body>
</html>`
